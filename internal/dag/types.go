package dag

import (
	"errors"
	"strings"
	"sync"
)

// ErrCycle is matched by every CycleError.
var ErrCycle = errors.New("dependency cycle")

// CycleError names the nodes of one cycle, starting and ending with the
// same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

// Is makes errors.Is(err, ErrCycle) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// Graph is a collection of nodes and their dependencies. All operations on
// the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	// order is the insertion order of node IDs.
	order []string
}

// node is un-exported so callers work with string IDs only.
type node struct {
	id  string
	seq int
	// deps holds the nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the nodes that depend on this node (successors).
	dependents map[string]*node
}
