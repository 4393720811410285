package geometry

import "math"

// Point represents a 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the point translated by dx, dy
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the vector from q to p
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size represents a width/height pair
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect builds a rectangle from a top-left anchor and a size
func NewRect(pos Point, size Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

// FromCorners builds the rectangle spanned by two arbitrary corner points
func FromCorners(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Position returns the top-left anchor
func (r Rect) Position() Point { return Point{X: r.X, Y: r.Y} }

// Area returns the rectangle's area
func (r Rect) Area() float64 { return r.Width * r.Height }

// Empty reports whether the rectangle has no extent on either axis
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether two rectangles overlap. Standard AABB
// separation test: they overlap unless one is entirely to the left,
// right, above, or below the other. Rects that only share an edge do
// not overlap, so a placement offset by exactly the collision padding
// clears its own source.
func (r Rect) Intersects(other Rect) bool {
	if r.Right() <= other.X || other.Right() <= r.X {
		return false
	}
	if r.Bottom() <= other.Y || other.Bottom() <= r.Y {
		return false
	}
	return true
}

// Inflate grows the rectangle by margin on every side
func (r Rect) Inflate(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Union returns the smallest rectangle covering both r and other
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// BoundingBox returns the union of all rectangles. The second return is
// false when the slice is empty.
func BoundingBox(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	box := rects[0]
	for _, r := range rects[1:] {
		box = box.Union(r)
	}
	return box, true
}
