package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNode is returned when a node name is registered twice.
	ErrDuplicateNode = errors.New("graph: duplicate node")
	// ErrInvalidNodeName is returned for empty names and the reserved END marker.
	ErrInvalidNodeName = errors.New("graph: invalid node name")
	// ErrNilHandler is returned when a node is registered without a handler.
	ErrNilHandler = errors.New("graph: nil handler")
	// ErrEntryNotSet is returned by Compile when no entry point was set.
	ErrEntryNotSet = errors.New("graph: entry point not set")
	// ErrNodeNotFound is returned when an edge or the entry point references an unregistered node.
	ErrNodeNotFound = errors.New("graph: node not found")
	// ErrDuplicateRouter is returned when a node gets a second conditional edge.
	ErrDuplicateRouter = errors.New("graph: node already has a conditional edge")
	// ErrNoTerminal is returned when no path from the entry point can ever finish.
	ErrNoTerminal = errors.New("graph: no terminal reachable from entry point")
	// ErrUnknownLabel is returned when a router picks a label missing from its label map.
	ErrUnknownLabel = errors.New("graph: unknown routing label")
	// ErrEmptyDecision is returned when a router returns no label.
	ErrEmptyDecision = errors.New("graph: router returned no label")
	// ErrDisjointnessViolation is returned when two branches of one round write the same key.
	ErrDisjointnessViolation = errors.New("graph: parallel branches wrote the same key")
	// ErrMaxRoundsExceeded is returned when a run exceeds the configured round limit.
	ErrMaxRoundsExceeded = errors.New("graph: exceeded maximum rounds")
	// ErrNodePanic wraps a value recovered from a panicking handler.
	ErrNodePanic = errors.New("graph: node panicked")
)

// NodeError annotates an error with the node it came from.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("graph: node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
