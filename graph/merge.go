package graph

import "fmt"

// MergePolicy decides what happens when parallel branches write the same key.
type MergePolicy int

const (
	// MergeStrict aborts the run with ErrDisjointnessViolation.
	MergeStrict MergePolicy = iota
	// MergeLastWins applies partials in frontier order; the last writer wins.
	MergeLastWins
)

func (p MergePolicy) String() string {
	switch p {
	case MergeStrict:
		return "strict"
	case MergeLastWins:
		return "last-wins"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(p))
	}
}

// mergeRound folds the partial states of one round into state. nodes and
// partials are aligned by index.
func mergeRound(policy MergePolicy, state State, nodes []string, partials []State) (State, error) {
	if policy == MergeStrict && len(partials) > 1 {
		owners := make(map[string]string)
		for i, partial := range partials {
			for key := range partial {
				if owner, ok := owners[key]; ok {
					return nil, fmt.Errorf("%w: key %q written by %s and %s",
						ErrDisjointnessViolation, key, owner, nodes[i])
				}
				owners[key] = nodes[i]
			}
		}
	}
	return state.Merge(partials...), nil
}
