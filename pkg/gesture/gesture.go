// Package gesture interprets raw pointer events into one semantic
// interaction at a time: panning, marquee selection, node drag, node
// resize, and edge drag-to-connect. The active gesture is a single
// tagged value, so illegal combinations (dragging one node while
// resizing another) are unrepresentable. Gestures never suspend; every
// transition is synchronous from pointer-down to pointer-up.
package gesture

import (
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/viewport"
)

// MinNodeWidth is the resize floor on the horizontal axis
const MinNodeWidth = 200.0

// MarqueeDeadZone is the canvas-area threshold below which a marquee
// counts as an empty-space click rather than a selection box
const MarqueeDeadZone = 25.0

// Kind enumerates the mutually exclusive interaction modes
type Kind int

const (
	KindIdle Kind = iota
	KindPanning
	KindMarquee
	KindDragNode
	KindResizeNode
	KindDragEdge
	KindDragNewNodeInput
)

// Side is one of a node's four edge-connector affordances
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Button identifies the pressed pointer button
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Pointer is a raw pointer event in screen coordinates
type Pointer struct {
	X, Y   float64
	Button Button
	Shift  bool
}

// TargetKind says what UI element a pointer-down landed on. The
// frontend resolves this; the machine only interprets it.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	TargetNodeBody
	TargetResizeHandle
	TargetConnector
	TargetNewNodeInput
	// TargetChrome is any control the machine must ignore (buttons,
	// text inputs, the node toolbar)
	TargetChrome
)

// Target describes the element under a pointer-down
type Target struct {
	Kind   TargetKind
	NodeID string
	Handle Handle // for TargetResizeHandle
	Side   Side   // for TargetConnector
}

// Env is the canvas state the machine reads and the live-update hooks
// it drives. Position and size writes stay exclusive to the active
// gesture for its duration.
type Env interface {
	Viewport() *viewport.Viewport
	Nodes() []*canvas.Node
	Geometry() *canvas.GeometryStore

	// MinHeight is the content-derived resize floor for a node: the
	// sum of its content elements' natural heights, so shrinking never
	// clips content.
	MinHeight(nodeID string) float64

	SetNodePosition(id string, p geometry.Point)
	SetNodeBounds(id string, r geometry.Rect)
}

// Machine holds the single active gesture
type Machine struct {
	env  Env
	kind Kind

	// marquee
	marqueeAnchor  geometry.Point
	marqueeCurrent geometry.Point
	marqueeShift   bool

	// node drag
	dragNodeID  string
	dragOffset  geometry.Point // pointer minus node origin, canvas units
	dragMoved   bool
	dragAnchor  geometry.Point

	// resize
	resizeNodeID string
	resizeHandle Handle
	resizeStart  geometry.Rect
	resizeGrab   geometry.Point

	// edge drag
	edgeSourceID string
	edgeSide     Side
	edgeStart    geometry.Point // exact click point, canvas units
	edgeCurrent  geometry.Point
	edgeHoverID  string

	// floating new-node input drag
	inputAnchor geometry.Point
	inputGrab   geometry.Point
	inputSource string
	inputSide   Side
}

// New creates an idle machine over the given environment
func New(env Env) *Machine {
	return &Machine{env: env}
}

// Kind returns the active gesture kind
func (m *Machine) Kind() Kind { return m.kind }

// Marquee returns the current selection box while marquee-selecting
func (m *Machine) Marquee() (geometry.Rect, bool) {
	if m.kind != KindMarquee {
		return geometry.Rect{}, false
	}
	return geometry.FromCorners(m.marqueeAnchor, m.marqueeCurrent), true
}

// EdgeDrag returns the in-flight edge preview while edge-dragging: the
// exact grab point, the cursor point, and the hovered target node id
// (empty when over blank space).
func (m *Machine) EdgeDrag() (start, current geometry.Point, hoverID string, ok bool) {
	if m.kind != KindDragEdge {
		return geometry.Point{}, geometry.Point{}, "", false
	}
	return m.edgeStart, m.edgeCurrent, m.edgeHoverID, true
}

// PointerDown starts a gesture according to the target under the
// pointer. Chrome targets and pointer-downs during an active gesture
// are ignored.
func (m *Machine) PointerDown(p Pointer, target Target) {
	if m.kind != KindIdle {
		return
	}

	vp := m.env.Viewport()
	cp := vp.ToCanvas(p.X, p.Y)

	switch target.Kind {
	case TargetBackground:
		if p.Button == ButtonMiddle {
			m.kind = KindPanning
			return
		}
		m.kind = KindMarquee
		m.marqueeAnchor = cp
		m.marqueeCurrent = cp
		m.marqueeShift = p.Shift

	case TargetNodeBody:
		n := m.findNode(target.NodeID)
		if n == nil {
			return
		}
		m.kind = KindDragNode
		m.dragNodeID = n.ID
		m.dragOffset = cp.Sub(n.Position)
		m.dragAnchor = cp
		m.dragMoved = false

	case TargetResizeHandle:
		n := m.findNode(target.NodeID)
		if n == nil {
			return
		}
		m.kind = KindResizeNode
		m.resizeNodeID = n.ID
		m.resizeHandle = target.Handle
		m.resizeStart = m.env.Geometry().RectOf(n)
		m.resizeGrab = cp

	case TargetConnector:
		if m.findNode(target.NodeID) == nil {
			return
		}
		m.kind = KindDragEdge
		m.edgeSourceID = target.NodeID
		m.edgeSide = target.Side
		m.edgeStart = cp
		m.edgeCurrent = cp
		m.edgeHoverID = ""

	case TargetNewNodeInput:
		m.kind = KindDragNewNodeInput
		m.inputGrab = cp.Sub(m.inputAnchor)
	}
}

// PointerMove updates only the active gesture's derived values
func (m *Machine) PointerMove(p Pointer, dx, dy float64) {
	vp := m.env.Viewport()

	switch m.kind {
	case KindPanning:
		vp.PanBy(dx, dy)

	case KindMarquee:
		m.marqueeCurrent = vp.ToCanvas(p.X, p.Y)

	case KindDragNode:
		cp := vp.ToCanvas(p.X, p.Y)
		if !m.dragMoved && (cp.X != m.dragAnchor.X || cp.Y != m.dragAnchor.Y) {
			m.dragMoved = true
		}
		m.env.SetNodePosition(m.dragNodeID, cp.Sub(m.dragOffset))

	case KindResizeNode:
		cp := vp.ToCanvas(p.X, p.Y)
		delta := cp.Sub(m.resizeGrab)
		minH := m.env.MinHeight(m.resizeNodeID)
		r := ApplyResize(m.resizeStart, m.resizeHandle, delta, MinNodeWidth, minH)
		m.env.SetNodeBounds(m.resizeNodeID, r)

	case KindDragEdge:
		m.edgeCurrent = vp.ToCanvas(p.X, p.Y)
		m.edgeHoverID = ""
		if hit := m.env.Geometry().NodeAt(m.env.Nodes(), m.edgeCurrent); hit != nil && hit.ID != m.edgeSourceID {
			m.edgeHoverID = hit.ID
		}

	case KindDragNewNodeInput:
		cp := vp.ToCanvas(p.X, p.Y)
		m.inputAnchor = cp.Sub(m.inputGrab)
	}
}

// PointerUp resolves the active gesture into a terminal action and
// returns to idle
func (m *Machine) PointerUp(p Pointer) Action {
	kind := m.kind
	m.kind = KindIdle

	switch kind {
	case KindMarquee:
		box := geometry.FromCorners(m.marqueeAnchor, m.marqueeCurrent)
		if box.Area() <= MarqueeDeadZone {
			// An empty-space click; a held modifier preserves the
			// current selection
			if m.marqueeShift {
				return ActionNone{}
			}
			return ActionClearSelection{}
		}
		ids := make([]string, 0)
		for _, n := range m.env.Geometry().NodesIntersecting(m.env.Nodes(), box) {
			ids = append(ids, n.ID)
		}
		return ActionSelectNodes{IDs: ids, Additive: m.marqueeShift}

	case KindDragNode:
		if !m.dragMoved {
			return ActionNodeClick{NodeID: m.dragNodeID, Additive: p.Shift}
		}
		n := m.findNode(m.dragNodeID)
		if n == nil {
			return ActionNone{}
		}
		return ActionCommitDrag{NodeID: m.dragNodeID, Position: n.Position}

	case KindDragEdge:
		if m.edgeHoverID != "" {
			return ActionConnectDrop{SourceID: m.edgeSourceID, TargetID: m.edgeHoverID, Side: m.edgeSide}
		}
		m.inputAnchor = m.edgeCurrent
		m.inputSource = m.edgeSourceID
		m.inputSide = m.edgeSide
		return ActionOpenNodeInput{SourceID: m.edgeSourceID, Side: m.edgeSide, Anchor: m.edgeCurrent}

	case KindResizeNode, KindPanning, KindDragNewNodeInput:
		// Already committed live during pointer-move
		return ActionNone{}
	}
	return ActionNone{}
}

// Cancel aborts the active gesture without resolving it
func (m *Machine) Cancel() {
	m.kind = KindIdle
}

// InputAnchor returns the floating new-node input anchor in canvas
// coordinates, valid after an edge drop on blank space
func (m *Machine) InputAnchor() (geometry.Point, string, Side) {
	return m.inputAnchor, m.inputSource, m.inputSide
}

// Wheel handles scroll input: with the zoom modifier held it zooms at
// the cursor, otherwise it pans. Callers must suppress the native
// browser gesture unconditionally before forwarding the event.
func (m *Machine) Wheel(screenX, screenY, deltaX, deltaY float64, zoomModifier bool) {
	vp := m.env.Viewport()
	if zoomModifier {
		vp.ZoomAtPoint(screenX, screenY, -deltaY*0.01)
		return
	}
	vp.PanBy(-deltaX, -deltaY)
}

func (m *Machine) findNode(id string) *canvas.Node {
	for _, n := range m.env.Nodes() {
		if n.ID == id {
			return n
		}
	}
	return nil
}
