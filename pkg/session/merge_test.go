package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/layout"
)

func TestInitiateMergeCreatesPendingNode(t *testing.T) {
	fb := &fakeBackend{suggestions: []string{"synthesize", "compare"}}
	s := newTestSession(t, fb)
	seedNodes(t, s, node("a", 0, 0), node("b", 400, 0))

	pendingID, err := s.InitiateMerge([]string{"a", "b"})
	if err != nil {
		t.Fatalf("InitiateMerge: %v", err)
	}

	p, ok := s.Node(pendingID)
	if !ok || p.PendingMerge == nil {
		t.Fatal("pending merge node missing")
	}
	if len(p.PendingMerge.SourceNodeIDs) != 2 {
		t.Errorf("unexpected sources %v", p.PendingMerge.SourceNodeIDs)
	}
	if !p.ConnectedToID("a") || !p.ConnectedToID("b") {
		t.Error("pending node not connected to both sources")
	}
	if !s.Camera().Animating() {
		t.Error("initiating a merge should focus the camera on the pending node")
	}

	// Suggestions arrive asynchronously from the backend
	waitFor(t, func() bool {
		p, ok := s.Node(pendingID)
		return ok && !p.PendingMerge.IsLoadingSuggestions
	})
	p, _ = s.Node(pendingID)
	if len(p.PendingMerge.Suggestions) != 2 || p.PendingMerge.Suggestions[0] != "synthesize" {
		t.Errorf("unexpected suggestions %v", p.PendingMerge.Suggestions)
	}
}

func TestInitiateMergeSuggestionFallback(t *testing.T) {
	fb := &fakeBackend{suggestErr: errBackendDown}
	s := newTestSession(t, fb)
	seedNodes(t, s, node("a", 0, 0), node("b", 400, 0))

	pendingID, err := s.InitiateMerge([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		p, ok := s.Node(pendingID)
		return ok && !p.PendingMerge.IsLoadingSuggestions
	})

	p, _ := s.Node(pendingID)
	want := backend.FallbackMergeSuggestions()
	if len(p.PendingMerge.Suggestions) != len(want) || p.PendingMerge.Suggestions[0] != want[0] {
		t.Errorf("expected fallback suggestions, got %v", p.PendingMerge.Suggestions)
	}
}

func TestInitiateMergeTwoWayPlacesBesideSource(t *testing.T) {
	s := newTestSession(t, &fakeBackend{})
	seedNodes(t, s, node("a", 0, 0), node("b", 600, 0))

	pendingID, err := s.InitiateMerge([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	// An edge-drop pair uses the two-candidate placement relative to
	// the dragged-from node, not the selection-bounds variant
	srcRect := s.Geometry().RectOf(mustNode(t, s, "a"))
	size := geometry.Size{Width: canvas.DefaultNodeWidth, Height: canvas.DefaultNodeHeight}
	obstacles := s.Geometry().Rects([]*canvas.Node{mustNode(t, s, "a"), mustNode(t, s, "b")})
	want := layout.ProposePosition(srcRect, size, layout.CollisionPadding, obstacles)

	p, _ := s.Node(pendingID)
	if p.Position != want.Position {
		t.Errorf("pending node at %v, want %v (%s of source)", p.Position, want.Position, want.Direction)
	}
}

func TestInitiateMergeTwoWayFallsBackLeft(t *testing.T) {
	s := newTestSession(t, &fakeBackend{})
	// b sits where the right-side candidate would land
	seedNodes(t, s, node("a", 0, 0), node("b", layout.CollisionPadding+canvas.DefaultNodeWidth, 0))

	pendingID, err := s.InitiateMerge([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	p, _ := s.Node(pendingID)
	aRect := s.Geometry().RectOf(mustNode(t, s, "a"))
	if p.Position.X >= aRect.X {
		t.Errorf("blocked right side should place left of the source, got %v", p.Position)
	}
}

func TestInitiateMergePlacementAvoidsSources(t *testing.T) {
	s := newTestSession(t, &fakeBackend{})
	seedNodes(t, s, node("a", 0, 0), node("b", 200, 100), node("c", 400, 200))

	pendingID, err := s.InitiateMerge([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	p, _ := s.Node(pendingID)
	pRect := s.Geometry().RectOf(p)
	var obstacles = s.Geometry().Rects([]*canvas.Node{mustNode(t, s, "a"), mustNode(t, s, "b"), mustNode(t, s, "c")})
	if layout.Collides(pRect, obstacles) {
		t.Errorf("pending node at %v overlaps a source", pRect)
	}
}

func TestInitiateMergeValidatesSources(t *testing.T) {
	s := newTestSession(t, &fakeBackend{})
	seedNodes(t, s, node("a", 0, 0))

	if _, err := s.InitiateMerge([]string{"a"}); !errors.Is(err, ErrTooFewSources) {
		t.Errorf("expected ErrTooFewSources, got %v", err)
	}
	if _, err := s.InitiateMerge([]string{"a", "ghost"}); !errors.Is(err, canvas.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if len(s.Nodes()) != 1 {
		t.Error("failed initiate left a pending node behind")
	}
}

func TestResolveMergePreservesIdentityAndEdges(t *testing.T) {
	fb := &fakeBackend{
		suggestions: []string{"s"},
		mergeNode:   backend.NodeData{Title: "Synthesis", Content: []string{"combined"}, Color: "green"},
	}
	s := newTestSession(t, fb)
	seedNodes(t, s, node("a", 0, 0), node("b", 400, 0), node("c", 800, 0))

	pendingID, err := s.InitiateMerge([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	// An edge into the pending node from elsewhere must survive
	if err := s.ConnectNodes("c", pendingID); err != nil {
		t.Fatal(err)
	}
	before := len(s.Nodes())

	if err := s.ResolveMerge(pendingID, "synthesize"); err != nil {
		t.Fatalf("ResolveMerge: %v", err)
	}

	if got := len(s.Nodes()); got != before {
		t.Errorf("resolve changed node count from %d to %d", before, got)
	}
	p, ok := s.Node(pendingID)
	if !ok {
		t.Fatal("node id did not survive resolve")
	}
	if p.PendingMerge != nil {
		t.Error("node still pending after resolve")
	}
	if p.Title != "Synthesis" || p.Color != canvas.ColorGreen {
		t.Errorf("content not applied: %q %s", p.Title, p.Color)
	}
	if !p.ConnectedToID("a") || !p.ConnectedToID("b") {
		t.Error("source edges lost in resolve")
	}
	c, _ := s.Node("c")
	if !c.ConnectedToID(pendingID) {
		t.Error("inbound edge lost in resolve")
	}
}

func TestResolveMergeBackendFailureKeepsPendingState(t *testing.T) {
	fb := &fakeBackend{mergeErr: errBackendDown}
	s := newTestSession(t, fb)
	seedNodes(t, s, node("a", 0, 0), node("b", 400, 0))

	pendingID, err := s.InitiateMerge([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.ResolveMerge(pendingID, "q"); !errors.Is(err, errBackendDown) {
		t.Fatalf("expected backend error, got %v", err)
	}
	p, _ := s.Node(pendingID)
	if p.PendingMerge == nil {
		t.Error("failed resolve cleared the pending state")
	}
}

func TestResolveMergeRejectsNonPendingNode(t *testing.T) {
	s := newTestSession(t, &fakeBackend{})
	seedNodes(t, s, node("a", 0, 0))

	if err := s.ResolveMerge("a", "q"); !errors.Is(err, canvas.ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
	if err := s.ResolveMerge("ghost", "q"); !errors.Is(err, canvas.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

// TestMergeFlowProperties runs the full initiate-resolve flow over
// random source counts, checking the structural invariants that the
// canvas cannot check on its own.
func TestMergeFlowProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("resolve keeps identity, edges, and node count", prop.ForAll(
		func(sources int) bool {
			fb := &fakeBackend{
				suggestions: []string{"s"},
				mergeNode:   backend.NodeData{Title: "M", Content: []string{"x"}, Color: "green"},
			}
			s := New(Config{Backend: fb, Bounds: testBounds})
			defer s.Close()

			nodes := make([]*canvas.Node, sources)
			ids := make([]string, sources)
			for i := range nodes {
				id := fmt.Sprintf("n%d", i)
				nodes[i] = node(id, float64(i)*500, 0)
				ids[i] = id
			}
			if err := s.LoadProject(Project{Nodes: nodes}); err != nil {
				return false
			}

			pendingID, err := s.InitiateMerge(ids)
			if err != nil {
				return false
			}
			if len(s.Nodes()) != sources+1 {
				return false
			}
			if err := s.ResolveMerge(pendingID, "q"); err != nil {
				return false
			}

			p, ok := s.Node(pendingID)
			if !ok || p.PendingMerge != nil {
				return false
			}
			for _, id := range ids {
				if !p.ConnectedToID(id) {
					return false
				}
			}
			return len(s.Nodes()) == sources+1
		},
		gen.IntRange(2, 6),
	))

	properties.TestingRun(t)
}

func mustNode(t *testing.T, s *Session, id string) *canvas.Node {
	t.Helper()
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n
}
