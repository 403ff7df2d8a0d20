// Package memory provides an in-process graph store for editing surfaces
// and tests.
package memory

import (
	"context"
	"sync"

	"github.com/meikuraledutech/pipeline"
)

// Store holds the nodes and edges of one pipeline being edited.
// Writers replace or append under a lock; Snapshot returns a deep copy so a
// submission never observes later edits.
type Store struct {
	mu    sync.RWMutex
	graph pipeline.Graph
}

var _ pipeline.GraphSource = (*Store)(nil)

// New creates a Store seeded with a copy of g.
func New(g pipeline.Graph) *Store {
	return &Store{graph: g.Clone()}
}

// Snapshot returns a consistent copy of the current graph.
func (s *Store) Snapshot(_ context.Context) (pipeline.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone(), nil
}

// Set replaces the whole graph.
func (s *Store) Set(g pipeline.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g.Clone()
}

// AddNode appends a node.
func (s *Store) AddNode(n pipeline.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Nodes = append(s.graph.Nodes, pipeline.Graph{Nodes: []pipeline.Node{n}}.Clone().Nodes[0])
}

// RemoveNode deletes a node and every edge attached to it.
// It reports whether the node existed.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	nodes := s.graph.Nodes[:0:0]
	for _, n := range s.graph.Nodes {
		if n.ID == id {
			found = true
			continue
		}
		nodes = append(nodes, n)
	}
	if !found {
		return false
	}
	edges := s.graph.Edges[:0:0]
	for _, e := range s.graph.Edges {
		if e.Source == id || e.Target == id {
			continue
		}
		edges = append(edges, e)
	}
	s.graph.Nodes = nodes
	s.graph.Edges = edges
	return true
}

// AddEdge appends an edge.
func (s *Store) AddEdge(e pipeline.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Edges = append(s.graph.Edges, e)
}

// RemoveEdge deletes the edge with the given ID and reports whether it existed.
func (s *Store) RemoveEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.graph.Edges {
		if e.ID == id {
			s.graph.Edges = append(s.graph.Edges[:i:i], s.graph.Edges[i+1:]...)
			return true
		}
	}
	return false
}
