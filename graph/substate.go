package graph

// Status reports how a branch finished.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// SubState is the envelope a branch writes into the key it owns.
// It is an atomic value from the merge's point of view.
type SubState struct {
	Result any    `json:"result,omitempty"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Success wraps a branch result.
func Success(result any) SubState {
	return SubState{Result: result, Status: StatusSuccess}
}

// Failure wraps a branch error.
func Failure(err error) SubState {
	s := SubState{Status: StatusFailure}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// Failed reports whether the branch failed.
func (s SubState) Failed() bool {
	return s.Status == StatusFailure
}

// SubStateOf returns the sub-state stored under key, if any.
func SubStateOf(state State, key string) (SubState, bool) {
	switch v := state[key].(type) {
	case SubState:
		return v, true
	case *SubState:
		if v == nil {
			return SubState{}, false
		}
		return *v, true
	default:
		return SubState{}, false
	}
}
