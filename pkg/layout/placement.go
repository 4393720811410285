// Package layout computes collision-aware positions for newly created
// and merged nodes, and the grid layout used by streaming ingestion.
// Node positions are placement-driven, not physics-simulated.
package layout

import (
	"github.com/prismdocs/atlas/pkg/geometry"
)

// CollisionPadding inflates every proposed rectangle before testing it
// against existing geometry, so placements never visually touch.
const CollisionPadding = 40.0

// Direction is the side of the source a placement landed on
type Direction string

const (
	DirRight Direction = "right"
	DirLeft  Direction = "left"
	DirBelow Direction = "below"
	DirAbove Direction = "above"
)

// Placement is a proposed node position and the side it was placed on
type Placement struct {
	Position  geometry.Point
	Direction Direction
}

// ProposePosition places a new node of the proposed size next to the
// source rect. Right of the source is tried first, then left; if both
// candidates collide the right side wins, which guarantees termination.
func ProposePosition(source geometry.Rect, proposed geometry.Size, gap float64, obstacles []geometry.Rect) Placement {
	right := geometry.Point{X: source.Right() + gap, Y: source.Y}
	left := geometry.Point{X: source.X - gap - proposed.Width, Y: source.Y}

	candidates := []Placement{
		{Position: right, Direction: DirRight},
		{Position: left, Direction: DirLeft},
	}
	return firstClear(candidates, proposed, obstacles)
}

// ProposeMergePosition places a merge node relative to the combined
// bounding box of the merged selection, trying right, left, below, and
// above in order and defaulting to the first candidate when every side
// is blocked.
func ProposeMergePosition(selection geometry.Rect, proposed geometry.Size, gap float64, obstacles []geometry.Rect) Placement {
	midY := selection.Y + selection.Height/2 - proposed.Height/2
	midX := selection.X + selection.Width/2 - proposed.Width/2

	candidates := []Placement{
		{Position: geometry.Point{X: selection.Right() + gap, Y: midY}, Direction: DirRight},
		{Position: geometry.Point{X: selection.X - gap - proposed.Width, Y: midY}, Direction: DirLeft},
		{Position: geometry.Point{X: midX, Y: selection.Bottom() + gap}, Direction: DirBelow},
		{Position: geometry.Point{X: midX, Y: selection.Y - gap - proposed.Height}, Direction: DirAbove},
	}
	return firstClear(candidates, proposed, obstacles)
}

// firstClear returns the first collision-free candidate, or the first
// candidate when all collide.
func firstClear(candidates []Placement, size geometry.Size, obstacles []geometry.Rect) Placement {
	for _, c := range candidates {
		if !Collides(geometry.NewRect(c.Position, size), obstacles) {
			return c
		}
	}
	return candidates[0]
}

// Collides reports whether the rect, inflated by CollisionPadding,
// intersects any obstacle.
func Collides(r geometry.Rect, obstacles []geometry.Rect) bool {
	inflated := r.Inflate(CollisionPadding)
	for _, o := range obstacles {
		if inflated.Intersects(o) {
			return true
		}
	}
	return false
}
