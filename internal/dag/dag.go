package dag

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrCombinationalLoop is returned by DetectCycles when the graph has a cycle.
var ErrCombinationalLoop = errors.New("combinational loop")

type vertex struct {
	id         string
	deps       map[string]*vertex
	dependents []*vertex
}

// Graph is a directed graph keyed by string IDs. Iteration follows
// insertion order so results are deterministic.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*vertex
	order []*vertex
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*vertex),
	}
}

// AddNode adds a vertex. Adding an existing ID does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	v := &vertex{id: id, deps: make(map[string]*vertex)}
	g.nodes[id] = v
	g.order = append(g.order, v)
}

// AddEdge creates a directed edge from fromID to toID: toID depends on
// fromID. Self edges are allowed, since a behaviour that reads its own
// output is a loop.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	if _, exists := to.deps[fromID]; exists {
		return nil
	}
	to.deps[fromID] = from
	from.dependents = append(from.dependents, to)
	return nil
}

// Dependents returns the IDs that depend on id, in edge insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	out := make([]string, 0, len(v.dependents))
	for _, d := range v.dependents {
		out = append(out, d.id)
	}
	return out, nil
}

// DetectCycles returns an error wrapping ErrCombinationalLoop and naming
// the vertices of the first cycle found, or nil.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Three-colour depth-first search: permanent vertices are fully explored
	// and not on a cycle; temporary vertices are on the current path.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var path []string

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		if permanent[v.id] {
			return nil
		}
		if temporary[v.id] {
			start := 0
			for i, id := range path {
				if id == v.id {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), v.id)
			return fmt.Errorf("%s: %w", strings.Join(cycle, " -> "), ErrCombinationalLoop)
		}

		temporary[v.id] = true
		path = append(path, v.id)
		for _, d := range v.dependents {
			if err := visit(d); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(temporary, v.id)
		permanent[v.id] = true
		return nil
	}

	for _, v := range g.order {
		if err := visit(v); err != nil {
			return err
		}
	}
	return nil
}
