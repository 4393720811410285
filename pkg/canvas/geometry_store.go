package canvas

import (
	"sync"

	"github.com/prismdocs/atlas/pkg/geometry"
)

// GeometryStore caches each node's measured bounding box in canvas
// coordinates. Node height is content-dependent and unknown until
// rendered, so consumers (hit-testing, collision checks, fit-to-view)
// treat the last measurement as authoritative and fall back to the
// node's explicit size only before the first measurement pass.
//
// Render loops measure from their own goroutine while session workers
// read placements concurrently, so the store carries its own lock.
//
// Staleness is bounded: a measurement pass runs after every render
// that could change node size, so consumers see at most one frame of
// stale geometry, never a stale node reference.
type GeometryStore struct {
	mu    sync.RWMutex
	rects map[string]geometry.Rect
}

// NewGeometryStore creates an empty store
func NewGeometryStore() *GeometryStore {
	return &GeometryStore{rects: make(map[string]geometry.Rect)}
}

// Set records a measured rect for a node id
func (s *GeometryStore) Set(id string, r geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rects[id] = r
}

// Get returns the measured rect for a node id. The second return is
// false when the node has not been measured yet.
func (s *GeometryStore) Get(id string) (geometry.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rects[id]
	return r, ok
}

// Delete drops the measurement for a node id
func (s *GeometryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rects, id)
}

// RectOf returns the authoritative rect for a node: the measurement if
// one exists, otherwise the node's fallback size at its position.
func (s *GeometryStore) RectOf(n *Node) geometry.Rect {
	s.mu.RLock()
	r, ok := s.rects[n.ID]
	s.mu.RUnlock()
	if ok {
		return r
	}
	return n.FallbackRect()
}

// Rects returns the authoritative rects for all given nodes
func (s *GeometryStore) Rects(nodes []*Node) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.RectOf(n))
	}
	return out
}

// Sync runs a measurement pass: measure reports each node's rendered
// size in canvas units, or false while the node has no rendered form
// yet. Measurements for nodes no longer present are evicted.
func (s *GeometryStore) Sync(nodes []*Node, measure func(*Node) (geometry.Size, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		live[n.ID] = true
		if measure == nil {
			continue
		}
		size, ok := measure(n)
		if !ok {
			continue
		}
		s.rects[n.ID] = geometry.NewRect(n.Position, size)
	}
	for id := range s.rects {
		if !live[id] {
			delete(s.rects, id)
		}
	}
}

// NodeAt returns the topmost node whose rect contains the canvas point.
// Later nodes win, matching render stacking order.
func (s *GeometryStore) NodeAt(nodes []*Node, p geometry.Point) *Node {
	var hit *Node
	for _, n := range nodes {
		if s.RectOf(n).Contains(p) {
			hit = n
		}
	}
	return hit
}

// NodesIntersecting returns every node whose rect overlaps the box
func (s *GeometryStore) NodesIntersecting(nodes []*Node, box geometry.Rect) []*Node {
	var out []*Node
	for _, n := range nodes {
		if s.RectOf(n).Intersects(box) {
			out = append(out, n)
		}
	}
	return out
}
