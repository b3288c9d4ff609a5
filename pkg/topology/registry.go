// Package topology holds the node registry: the electrical buses sensors are
// attached to, their rated voltage bases and their energization status.
package topology

import (
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// Node is one electrical bus. URated is the rated line-to-line voltage in
// volts and serves as the per-unit base for every sensor attached to the
// node. Energized is determined by the surrounding network model, never by
// the sensors themselves.
type Node struct {
	ID        int     `json:"id"`
	URated    float64 `json:"u_rated"`
	Energized bool    `json:"energized"`
}

// Registry is a concurrency-safe id-keyed collection of nodes.
type Registry struct {
	mu    sync.RWMutex
	nodes map[int]Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: map[int]Node{}}
}

// Add inserts a node. Duplicate ids are rejected.
func (r *Registry) Add(n Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[n.ID]; ok {
		return pkgerrors.Errorf("duplicate node id %d", n.ID)
	}
	r.nodes[n.ID] = n
	return nil
}

// Get looks a node up by id.
func (r *Registry) Get(id int) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Energized reports the energization status of a node. Unknown nodes are
// never energized.
func (r *Registry) Energized(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes[id].Energized
}

// SetEnergized updates the energization status of a node.
func (r *Registry) SetEnergized(id int, energized bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return pkgerrors.Errorf("unknown node id %d", id)
	}
	n.Energized = energized
	r.nodes[id] = n
	return nil
}

// IDs returns all node ids in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
