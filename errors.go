package edugen

import "errors"

var (
	// ErrEmptyResponse is returned when a model answers without any text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrInvalidOutput is returned when structured output fails schema or field validation.
	ErrInvalidOutput = errors.New("model output does not match the expected schema")
	// ErrModelProviderRequired is returned when a component is built without a model.
	ErrModelProviderRequired = errors.New("model provider is required")
)
