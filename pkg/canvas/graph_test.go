package canvas

import (
	"errors"
	"testing"

	"github.com/prismdocs/atlas/pkg/geometry"
)

func newTestNode(id string) *Node {
	return &Node{ID: id, Title: id, Color: ColorBlue}
}

func TestAddAndConnect(t *testing.T) {
	g := NewGraph()
	if err := g.Add(newTestNode("a")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := g.Add(newTestNode("b")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := g.Connect("a", "b"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !g.Node("a").ConnectedToID("b") {
		t.Error("expected a->b edge")
	}

	// Connecting twice must not duplicate the edge
	if err := g.Connect("a", "b"); err != nil {
		t.Fatalf("repeat Connect failed: %v", err)
	}
	if len(g.Node("a").ConnectedTo) != 1 {
		t.Errorf("expected 1 edge, got %d", len(g.Node("a").ConnectedTo))
	}
}

func TestConnectRejectsMissingAndSelf(t *testing.T) {
	g := NewGraph()
	g.Add(newTestNode("a"))

	if err := g.Connect("a", "ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if err := g.Connect("ghost", "a"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if err := g.Connect("a", "a"); !errors.Is(err, ErrSelfEdge) {
		t.Errorf("expected ErrSelfEdge, got %v", err)
	}
}

func TestAddConnectedAtomicity(t *testing.T) {
	g := NewGraph()
	g.Add(newTestNode("src"))

	child := newTestNode("child")
	if err := g.AddConnected(child, "src"); err != nil {
		t.Fatalf("AddConnected failed: %v", err)
	}
	if !g.Node("src").ConnectedToID("child") {
		t.Error("expected src->child edge")
	}

	// Missing source leaves the graph unchanged
	orphan := newTestNode("orphan")
	if err := g.AddConnected(orphan, "ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if g.Has("orphan") {
		t.Error("orphan node must not be inserted when source is missing")
	}
}

// Node A connects to B and C; deleting B leaves A's edges as [C] and
// cleans B out of every other adjacency list.
func TestDeleteCascades(t *testing.T) {
	g := NewGraph()
	g.Add(newTestNode("a"))
	g.Add(newTestNode("b"))
	g.Add(newTestNode("c"))
	g.Connect("a", "b")
	g.Connect("a", "c")
	g.Connect("c", "b")

	if err := g.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	a := g.Node("a")
	if len(a.ConnectedTo) != 1 || a.ConnectedTo[0] != "c" {
		t.Errorf("expected a.ConnectedTo == [c], got %v", a.ConnectedTo)
	}
	if len(g.Node("c").ConnectedTo) != 0 {
		t.Errorf("expected c edges cleaned, got %v", g.Node("c").ConnectedTo)
	}
	if g.Has("b") {
		t.Error("b still present after delete")
	}
}

func TestDeleteAllSinglePass(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.Add(newTestNode(id))
	}
	g.Connect("a", "b")
	g.Connect("a", "c")
	g.Connect("d", "b")

	removed := g.DeleteAll([]string{"b", "c", "b", "ghost"})
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if len(g.Node("a").ConnectedTo) != 0 {
		t.Errorf("expected a edges cleaned, got %v", g.Node("a").ConnectedTo)
	}
	if len(g.Node("d").ConnectedTo) != 0 {
		t.Errorf("expected d edges cleaned, got %v", g.Node("d").ConnectedTo)
	}
	if g.Len() != 2 {
		t.Errorf("expected 2 nodes left, got %d", g.Len())
	}
}

func TestNewGraphFromDropsDanglingEdges(t *testing.T) {
	a := newTestNode("a")
	a.ConnectedTo = []string{"b", "ghost"}
	b := newTestNode("b")

	g := NewGraphFrom([]*Node{a, b, nil})

	if got := g.Node("a").ConnectedTo; len(got) != 1 || got[0] != "b" {
		t.Errorf("expected dangling edge dropped, got %v", got)
	}
}

func TestResolveMergeIsOneWay(t *testing.T) {
	g := NewGraph()
	g.Add(newTestNode("s1"))
	g.Add(newTestNode("s2"))

	pending := newTestNode("m")
	pending.PendingMerge = &PendingMerge{
		SourceNodeIDs:        []string{"s1", "s2"},
		IsLoadingSuggestions: true,
	}
	g.Add(pending)
	g.Connect("s1", "m")
	g.Connect("s2", "m")

	err := g.ResolveMerge("m", "Synthesis", []string{"point one", "point two"}, ColorGreen)
	if err != nil {
		t.Fatalf("ResolveMerge failed: %v", err)
	}

	m := g.Node("m")
	if m.PendingMerge != nil {
		t.Error("pending state not cleared")
	}
	if m.Title != "Synthesis" || m.Color != ColorGreen {
		t.Errorf("content not replaced: %+v", m)
	}
	// Identity and inbound edges preserved
	if !g.Node("s1").ConnectedToID("m") || !g.Node("s2").ConnectedToID("m") {
		t.Error("inbound edges lost across resolution")
	}

	// A resolved node never returns to pending
	if err := g.ResolveMerge("m", "Again", nil, ColorRed); !errors.Is(err, ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
}

func TestResolveMergeInvalidColorFallsBack(t *testing.T) {
	g := NewGraph()
	n := newTestNode("m")
	n.PendingMerge = &PendingMerge{SourceNodeIDs: []string{"x"}}
	g.Add(n)

	if err := g.ResolveMerge("m", "T", nil, Color("magenta")); err != nil {
		t.Fatalf("ResolveMerge failed: %v", err)
	}
	if g.Node("m").Color != ColorSlate {
		t.Errorf("expected slate fallback, got %s", g.Node("m").Color)
	}
}

func TestEdgesEnumeration(t *testing.T) {
	g := NewGraph()
	g.Add(newTestNode("a"))
	g.Add(newTestNode("b"))
	g.Connect("a", "b")

	edges := g.Edges()
	if len(edges) != 1 || edges[0] != [2]string{"a", "b"} {
		t.Errorf("unexpected edges: %v", edges)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	g := NewGraph()
	n := newTestNode("a")
	n.Content = []string{"line"}
	g.Add(n)

	snap := g.Snapshot()
	snap[0].Content[0] = "mutated"
	snap[0].Position = geometry.Point{X: 99, Y: 99}

	if g.Node("a").Content[0] != "line" {
		t.Error("snapshot shares content slice with live node")
	}
	if g.Node("a").Position.X != 0 {
		t.Error("snapshot shares position with live node")
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("green")
	if err != nil || c != ColorGreen {
		t.Errorf("ParseColor(green) = %v, %v", c, err)
	}

	if _, err := ParseColor("chartreuse"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor, got %v", err)
	}
	if _, err := ParseColor(""); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("empty string should be invalid, got %v", err)
	}
}
