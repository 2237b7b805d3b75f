package graph

import "maps"

// State represents the data that flows through the graph.
// It is implemented as a map of string keys to arbitrary values.
// Handlers receive a snapshot and return only the keys they write.
type State map[string]any

// Clone performs a shallow copy using maps.Clone so callers can mutate without
// affecting the original map (nested references are shared intentionally).
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return State(maps.Clone(map[string]any(s)))
}

// Merge returns a new State where every key of the partials replaces the
// matching key of s. Values are replaced wholesale, never deep-merged, and
// no key is ever removed. Partials are applied in order.
func (s State) Merge(partials ...State) State {
	merged := s.Clone()
	for _, partial := range partials {
		for k, v := range partial {
			merged[k] = v
		}
	}
	return merged
}

// Get returns the value stored under key if it has type T.
func Get[T any](s State, key string) (T, bool) {
	v, ok := s[key].(T)
	return v, ok
}
