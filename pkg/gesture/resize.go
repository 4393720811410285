package gesture

import "github.com/prismdocs/atlas/pkg/geometry"

// Handle identifies one of the eight resize affordances: four corners
// plus four edge-midpoint strips. The edge strips are split so the
// connector affordances stay unobstructed, but both halves map to the
// same handle here.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

func (h Handle) hasNorth() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) hasSouth() bool { return h == HandleS || h == HandleSE || h == HandleSW }
func (h Handle) hasEast() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) hasWest() bool  { return h == HandleW || h == HandleNW || h == HandleSW }

// ApplyResize computes the node rect after dragging a handle by delta
// from the gesture's starting rect. Width and height are floored at
// the minimums; on the edges that also move the anchor (west, north),
// position changes only by the amount the size actually changed, so a
// node never slides once its minimum is hit.
func ApplyResize(start geometry.Rect, h Handle, delta geometry.Point, minWidth, minHeight float64) geometry.Rect {
	r := start

	if h.hasEast() {
		r.Width = clampMin(start.Width+delta.X, minWidth)
	}
	if h.hasWest() {
		r.Width = clampMin(start.Width-delta.X, minWidth)
		r.X = start.X + (start.Width - r.Width)
	}
	if h.hasSouth() {
		r.Height = clampMin(start.Height+delta.Y, minHeight)
	}
	if h.hasNorth() {
		r.Height = clampMin(start.Height-delta.Y, minHeight)
		r.Y = start.Y + (start.Height - r.Height)
	}

	return r
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}
