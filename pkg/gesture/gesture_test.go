package gesture

import (
	"testing"

	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/viewport"
)

// testEnv is a minimal canvas environment with an identity-ish
// viewport (scale 1, zero offset, zero container origin)
type testEnv struct {
	vp        *viewport.Viewport
	nodes     []*canvas.Node
	geo       *canvas.GeometryStore
	minHeight float64
}

func newTestEnv(nodes ...*canvas.Node) *testEnv {
	vp := viewport.New(func() viewport.Bounds {
		return viewport.Bounds{Width: 1600, Height: 900}
	})
	vp.Scale = 1.0
	return &testEnv{vp: vp, nodes: nodes, geo: canvas.NewGeometryStore(), minHeight: 100}
}

func (e *testEnv) Viewport() *viewport.Viewport       { return e.vp }
func (e *testEnv) Nodes() []*canvas.Node              { return e.nodes }
func (e *testEnv) Geometry() *canvas.GeometryStore    { return e.geo }
func (e *testEnv) MinHeight(string) float64           { return e.minHeight }
func (e *testEnv) SetNodePosition(id string, p geometry.Point) {
	for _, n := range e.nodes {
		if n.ID == id {
			n.Position = p
		}
	}
}
func (e *testEnv) SetNodeBounds(id string, r geometry.Rect) {
	for _, n := range e.nodes {
		if n.ID == id {
			n.Position = r.Position()
			n.Width = r.Width
			n.Height = r.Height
		}
	}
}

func node(id string, x, y, w, h float64) *canvas.Node {
	return &canvas.Node{ID: id, Position: geometry.Point{X: x, Y: y}, Width: w, Height: h}
}

// Three nodes at (0,0)-(100,50), (200,0)-(300,50), (50,100)-(150,150);
// a marquee from (10,10) to (250,60) selects the first two only.
func TestMarqueeSelectScenario(t *testing.T) {
	env := newTestEnv(
		node("a", 0, 0, 100, 50),
		node("b", 200, 0, 100, 50),
		node("c", 50, 100, 100, 50),
	)
	m := New(env)

	m.PointerDown(Pointer{X: 10, Y: 10}, Target{Kind: TargetBackground})
	if m.Kind() != KindMarquee {
		t.Fatalf("expected marquee, got %v", m.Kind())
	}
	m.PointerMove(Pointer{X: 250, Y: 60}, 240, 50)

	action := m.PointerUp(Pointer{X: 250, Y: 60})
	sel, ok := action.(ActionSelectNodes)
	if !ok {
		t.Fatalf("expected ActionSelectNodes, got %T", action)
	}
	if len(sel.IDs) != 2 || sel.IDs[0] != "a" || sel.IDs[1] != "b" {
		t.Errorf("expected [a b], got %v", sel.IDs)
	}
	if m.Kind() != KindIdle {
		t.Error("machine not idle after pointer-up")
	}
}

func TestMarqueeDeadZoneClearsSelection(t *testing.T) {
	env := newTestEnv(node("a", 0, 0, 100, 50))
	m := New(env)

	m.PointerDown(Pointer{X: 500, Y: 500}, Target{Kind: TargetBackground})
	m.PointerMove(Pointer{X: 502, Y: 502}, 2, 2)
	if _, ok := m.PointerUp(Pointer{X: 502, Y: 502}).(ActionClearSelection); !ok {
		t.Error("tiny marquee should clear selection")
	}

	// Held modifier preserves the selection instead
	m.PointerDown(Pointer{X: 500, Y: 500, Shift: true}, Target{Kind: TargetBackground})
	if _, ok := m.PointerUp(Pointer{X: 500, Y: 500}).(ActionNone); !ok {
		t.Error("modified empty click must not clear selection")
	}
}

func TestDragNodeTracksWithoutJump(t *testing.T) {
	n := node("a", 100, 100, 100, 50)
	env := newTestEnv(n)
	m := New(env)

	// Grab the node 30,10 inside its body
	m.PointerDown(Pointer{X: 130, Y: 110}, Target{Kind: TargetNodeBody, NodeID: "a"})
	m.PointerMove(Pointer{X: 180, Y: 140}, 50, 30)

	if n.Position.X != 150 || n.Position.Y != 130 {
		t.Errorf("node at %+v, want (150, 130)", n.Position)
	}

	action := m.PointerUp(Pointer{X: 180, Y: 140})
	commit, ok := action.(ActionCommitDrag)
	if !ok {
		t.Fatalf("expected ActionCommitDrag, got %T", action)
	}
	if commit.Position.X != 150 || commit.Position.Y != 130 {
		t.Errorf("committed %+v", commit.Position)
	}
}

func TestClickWithoutDragIsNodeClick(t *testing.T) {
	env := newTestEnv(node("a", 100, 100, 100, 50))
	m := New(env)

	m.PointerDown(Pointer{X: 130, Y: 110}, Target{Kind: TargetNodeBody, NodeID: "a"})
	action := m.PointerUp(Pointer{X: 130, Y: 110, Shift: true})

	click, ok := action.(ActionNodeClick)
	if !ok {
		t.Fatalf("expected ActionNodeClick, got %T", action)
	}
	if click.NodeID != "a" || !click.Additive {
		t.Errorf("unexpected click %+v", click)
	}
}

func TestResizeGestureCommitsLive(t *testing.T) {
	n := node("a", 100, 100, 300, 200)
	env := newTestEnv(n)
	m := New(env)

	m.PointerDown(Pointer{X: 400, Y: 300}, Target{Kind: TargetResizeHandle, NodeID: "a", Handle: HandleSE})
	m.PointerMove(Pointer{X: 450, Y: 340}, 50, 40)

	if n.Width != 350 || n.Height != 240 {
		t.Errorf("live size (%f, %f), want (350, 240)", n.Width, n.Height)
	}

	if _, ok := m.PointerUp(Pointer{X: 450, Y: 340}).(ActionNone); !ok {
		t.Error("resize resolves with no terminal action")
	}
}

func TestEdgeDragHoverAndDrop(t *testing.T) {
	src := node("src", 0, 0, 100, 50)
	dst := node("dst", 300, 0, 100, 50)
	env := newTestEnv(src, dst)
	m := New(env)

	m.PointerDown(Pointer{X: 100, Y: 25}, Target{Kind: TargetConnector, NodeID: "src", Side: SideRight})
	if m.Kind() != KindDragEdge {
		t.Fatalf("expected edge drag, got %v", m.Kind())
	}

	// Over blank space: no hover target
	m.PointerMove(Pointer{X: 200, Y: 25}, 100, 0)
	if _, _, hover, _ := m.EdgeDrag(); hover != "" {
		t.Errorf("unexpected hover %q", hover)
	}

	// Over the target node
	m.PointerMove(Pointer{X: 350, Y: 25}, 150, 0)
	start, _, hover, _ := m.EdgeDrag()
	if hover != "dst" {
		t.Errorf("hover = %q, want dst", hover)
	}
	// The edge preview starts at the exact click point, not the center
	if start.X != 100 || start.Y != 25 {
		t.Errorf("edge start %+v, want (100, 25)", start)
	}

	action := m.PointerUp(Pointer{X: 350, Y: 25})
	drop, ok := action.(ActionConnectDrop)
	if !ok {
		t.Fatalf("expected ActionConnectDrop, got %T", action)
	}
	if drop.SourceID != "src" || drop.TargetID != "dst" || drop.Side != SideRight {
		t.Errorf("unexpected drop %+v", drop)
	}
}

func TestEdgeDropOnBlankOpensNodeInput(t *testing.T) {
	env := newTestEnv(node("src", 0, 0, 100, 50))
	m := New(env)

	m.PointerDown(Pointer{X: 100, Y: 25}, Target{Kind: TargetConnector, NodeID: "src", Side: SideBottom})
	m.PointerMove(Pointer{X: 500, Y: 400}, 400, 375)

	action := m.PointerUp(Pointer{X: 500, Y: 400})
	open, ok := action.(ActionOpenNodeInput)
	if !ok {
		t.Fatalf("expected ActionOpenNodeInput, got %T", action)
	}
	if open.SourceID != "src" || open.Side != SideBottom {
		t.Errorf("unexpected open %+v", open)
	}
	if open.Anchor.X != 500 || open.Anchor.Y != 400 {
		t.Errorf("anchor %+v, want release point", open.Anchor)
	}
}

func TestEdgeDragNeverHoversSelf(t *testing.T) {
	src := node("src", 0, 0, 100, 50)
	env := newTestEnv(src)
	m := New(env)

	m.PointerDown(Pointer{X: 100, Y: 25}, Target{Kind: TargetConnector, NodeID: "src", Side: SideRight})
	m.PointerMove(Pointer{X: 50, Y: 25}, -50, 0)

	if _, _, hover, _ := m.EdgeDrag(); hover != "" {
		t.Errorf("edge drag hovered its own source: %q", hover)
	}
}

func TestPanningByMiddleButton(t *testing.T) {
	env := newTestEnv()
	m := New(env)

	m.PointerDown(Pointer{X: 100, Y: 100, Button: ButtonMiddle}, Target{Kind: TargetBackground})
	if m.Kind() != KindPanning {
		t.Fatalf("expected panning, got %v", m.Kind())
	}
	m.PointerMove(Pointer{X: 130, Y: 90}, 30, -10)

	if env.vp.Offset.X != 30 || env.vp.Offset.Y != -10 {
		t.Errorf("offset %+v, want (30, -10)", env.vp.Offset)
	}
}

func TestGesturesAreMutuallyExclusive(t *testing.T) {
	env := newTestEnv(node("a", 0, 0, 100, 50))
	m := New(env)

	m.PointerDown(Pointer{X: 500, Y: 500}, Target{Kind: TargetBackground})
	// A second pointer-down during an active gesture is ignored
	m.PointerDown(Pointer{X: 10, Y: 10}, Target{Kind: TargetNodeBody, NodeID: "a"})

	if m.Kind() != KindMarquee {
		t.Errorf("second pointer-down replaced the active gesture: %v", m.Kind())
	}
}

func TestChromeTargetIgnored(t *testing.T) {
	env := newTestEnv()
	m := New(env)
	m.PointerDown(Pointer{X: 10, Y: 10}, Target{Kind: TargetChrome})
	if m.Kind() != KindIdle {
		t.Errorf("chrome target started a gesture: %v", m.Kind())
	}
}

func TestWheelZoomVsPan(t *testing.T) {
	env := newTestEnv()
	m := New(env)
	env.vp.Scale = 1.0

	m.Wheel(400, 300, 0, -50, true)
	if env.vp.Scale <= 1.0 {
		t.Errorf("zoom modifier wheel did not zoom in: %f", env.vp.Scale)
	}

	before := env.vp.Offset
	m.Wheel(400, 300, 10, 20, false)
	if env.vp.Offset.X != before.X-10 || env.vp.Offset.Y != before.Y-20 {
		t.Errorf("plain wheel did not pan: %+v", env.vp.Offset)
	}
}
