package edugen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

const outputInstruction = `Your response should be in JSON format.
Do not include any explanations, only provide a RFC8259 compliant JSON response following this format without deviation.
Do not include markdown code blocks in your response.
Here is the JSON Schema instance your output must adhere to:
`

// OutputOption configures an OutputConverter.
type OutputOption func(*outputOptions)

type outputOptions struct {
	model    string
	enums    map[string][]any
	validate *validator.Validate
}

// WithOutputModel sets the model name sent with every request.
func WithOutputModel(name string) OutputOption {
	return func(o *outputOptions) {
		o.model = name
	}
}

// WithEnum restricts a top-level property to the given values. For array
// properties the restriction applies to the items.
func WithEnum(property string, values ...string) OutputOption {
	return func(o *outputOptions) {
		enum := make([]any, len(values))
		for i, v := range values {
			enum[i] = v
		}
		o.enums[property] = enum
	}
}

// WithValidator replaces the validator used for `validate` struct tags.
func WithValidator(v *validator.Validate) OutputOption {
	return func(o *outputOptions) {
		o.validate = v
	}
}

// OutputConverter asks a model for JSON matching the schema of T and checks the
// answer at the boundary: JSON schema first, then `validate` struct tags.
type OutputConverter[T any] struct {
	provider ModelProvider
	model    string
	schema   string
	resolved *jsonschema.Resolved
	validate *validator.Validate
}

// NewOutputConverter builds the schema for T once; the converter is safe for concurrent use.
func NewOutputConverter[T any](provider ModelProvider, opts ...OutputOption) (*OutputConverter[T], error) {
	if provider == nil {
		return nil, ErrModelProviderRequired
	}
	o := outputOptions{enums: make(map[string][]any)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.validate == nil {
		o.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}
	for property, enum := range o.enums {
		prop, ok := schema.Properties[property]
		if !ok {
			return nil, fmt.Errorf("output schema: no property %q", property)
		}
		if prop.Items != nil {
			prop = prop.Items
		}
		prop.Enum = enum
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, err
	}
	return &OutputConverter[T]{
		provider: provider,
		model:    o.model,
		schema:   string(b),
		resolved: resolved,
		validate: o.validate,
	}, nil
}

// Schema returns the JSON schema sent to the model.
func (o *OutputConverter[T]) Schema() string {
	return o.schema
}

// Generate runs the prompt and decodes the answer into T.
func (o *OutputConverter[T]) Generate(ctx context.Context, prompt *Prompt, opts ...ModelOption) (T, error) {
	var result T
	messages := make([]*Message, 0, len(prompt.Messages)+1)
	messages = append(messages, SystemMessage(outputInstruction+o.schema))
	messages = append(messages, prompt.Messages...)
	res, err := o.provider.Generate(ctx, &ModelRequest{
		Model:    o.model,
		Messages: messages,
	}, append([]ModelOption{JSONOutput()}, opts...)...)
	if err != nil {
		return result, err
	}
	text := trimCodeFence(res.Text())
	if text == "" {
		return result, ErrEmptyResponse
	}
	var instance any
	if err := json.Unmarshal([]byte(text), &instance); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return result, fmt.Errorf("%w: %v (repair: %v)", ErrInvalidOutput, err, repairErr)
		}
		text = repaired
		if err := json.Unmarshal([]byte(text), &instance); err != nil {
			return result, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	if err := o.resolved.Validate(instance); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := o.validate.Struct(result); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			return result, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

func trimCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
