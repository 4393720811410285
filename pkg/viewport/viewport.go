package viewport

import (
	"github.com/prismdocs/atlas/pkg/geometry"
)

// Scale limits for interactive zoom
const (
	MinScale = 0.2
	MaxScale = 3.0

	// DefaultScale is used when a canvas has no nodes to fit
	DefaultScale = 0.65

	// FitMaxScale caps the zoom chosen by FitToView
	FitMaxScale = 1.2

	// FitPadding is the margin kept around the fitted bounding box, in
	// screen pixels on every side
	FitPadding = 100.0
)

// Bounds is the container's bounding rect in screen coordinates
type Bounds struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// BoundsFunc reports the container's current bounds. It is called on
// every conversion because the container itself may move or resize.
type BoundsFunc func() Bounds

// Viewport maintains the pan offset and zoom scale of a canvas and
// converts between screen (pointer) and canvas (logical) coordinates.
// The forward transform is screen = canvas*scale + offset + origin.
type Viewport struct {
	Offset geometry.Point
	Scale  float64

	bounds BoundsFunc
}

// New creates a viewport at the default offset and scale
func New(bounds BoundsFunc) *Viewport {
	if bounds == nil {
		bounds = func() Bounds { return Bounds{} }
	}
	return &Viewport{Scale: DefaultScale, bounds: bounds}
}

// ContainerBounds reports the container's current screen rect
func (v *Viewport) ContainerBounds() Bounds {
	return v.bounds()
}

// ToCanvas converts a screen point to canvas coordinates
func (v *Viewport) ToCanvas(screenX, screenY float64) geometry.Point {
	b := v.bounds()
	return geometry.Point{
		X: (screenX - b.Left - v.Offset.X) / v.Scale,
		Y: (screenY - b.Top - v.Offset.Y) / v.Scale,
	}
}

// ToScreen converts a canvas point to screen coordinates
func (v *Viewport) ToScreen(p geometry.Point) (float64, float64) {
	b := v.bounds()
	return p.X*v.Scale + v.Offset.X + b.Left,
		p.Y*v.Scale + v.Offset.Y + b.Top
}

// PanBy translates the offset directly. Used for trackpad two-finger
// scroll and active mouse-drag panning.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

// ZoomAtPoint adjusts the scale by delta and recomputes the offset so
// the canvas point under (screenX, screenY) stays visually fixed.
func (v *Viewport) ZoomAtPoint(screenX, screenY, delta float64) {
	b := v.bounds()
	px := screenX - b.Left
	py := screenY - b.Top

	oldScale := v.Scale
	newScale := ClampScale(oldScale + delta)
	if newScale == oldScale {
		return
	}

	ratio := newScale / oldScale
	v.Offset.X = px - (px-v.Offset.X)*ratio
	v.Offset.Y = py - (py-v.Offset.Y)*ratio
	v.Scale = newScale
}

// FitToView frames the union bounding box of the given node rects,
// choosing the largest scale <= FitMaxScale that fits the box inside
// the container minus FitPadding on every side, and centering it.
// With no rects the viewport resets to the defaults. A degenerate box
// is a no-op.
func (v *Viewport) FitToView(rects []geometry.Rect) {
	if len(rects) == 0 {
		v.Offset = geometry.Point{}
		v.Scale = DefaultScale
		return
	}

	box, _ := geometry.BoundingBox(rects)
	if box.Width <= 0 || box.Height <= 0 {
		return
	}

	b := v.bounds()
	availW := b.Width - 2*FitPadding
	availH := b.Height - 2*FitPadding
	if availW <= 0 || availH <= 0 {
		return
	}

	scale := availW / box.Width
	if s := availH / box.Height; s < scale {
		scale = s
	}
	if scale > FitMaxScale {
		scale = FitMaxScale
	}
	scale = ClampScale(scale)

	center := box.Center()
	v.Scale = scale
	v.Offset.X = b.Width/2 - center.X*scale
	v.Offset.Y = b.Height/2 - center.Y*scale
}

// ClampScale bounds a scale value to the interactive zoom range
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
