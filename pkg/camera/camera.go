// Package camera animates the viewport toward a target node. The
// director owns no node state of its own; it reads measured geometry
// through a lookup and writes offset and scale on the viewport each
// step. Only one focus is live at a time, the latest request wins.
package camera

import (
	"math"

	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/viewport"
)

const (
	// Spring constants for the focus animation. Damping is chosen
	// critically for the stiffness so the camera never overshoots.
	Stiffness = 170.0
	Damping   = 26.0

	// DefaultFocusScale is used when a focus request does not name a
	// target zoom level.
	DefaultFocusScale = 1.0

	// settleEpsilon ends the animation once every axis is within this
	// distance of its target and effectively at rest.
	settleEpsilon = 0.5
)

// RectLookup resolves a node id to its measured canvas rect. The
// second return is false while the node has not been measured yet.
type RectLookup func(id string) (geometry.Rect, bool)

type axis struct {
	value    float64
	velocity float64
	target   float64
}

func (a *axis) step(dt float64) {
	accel := Stiffness*(a.target-a.value) - Damping*a.velocity
	a.velocity += accel * dt
	a.value += a.velocity * dt
}

func (a *axis) settled() bool {
	return math.Abs(a.target-a.value) < settleEpsilon && math.Abs(a.velocity) < settleEpsilon
}

// Director drives viewport focus animations. Not safe for concurrent
// use; callers serialize access the same way they serialize every
// other viewport write.
type Director struct {
	vp     *viewport.Viewport
	rectOf RectLookup

	animating        bool
	offsetX, offsetY axis
	scale            axis

	// A focus requested before the node is measured is parked here
	// and retried on the next step.
	pendingID    string
	pendingScale float64
}

func New(vp *viewport.Viewport, rectOf RectLookup) *Director {
	return &Director{vp: vp, rectOf: rectOf}
}

// FocusOnNode starts an animation that centers the node in the
// container at the given scale. A non-positive scale means
// DefaultFocusScale. If the node has no measured geometry yet the
// request is deferred and retried once measurement lands; a newer
// request supersedes a deferred or running one.
func (d *Director) FocusOnNode(id string, targetScale float64) {
	if targetScale <= 0 {
		targetScale = DefaultFocusScale
	}
	targetScale = viewport.ClampScale(targetScale)

	rect, ok := d.rectOf(id)
	if !ok {
		d.pendingID = id
		d.pendingScale = targetScale
		d.animating = false
		return
	}
	d.pendingID = ""
	d.begin(rect, targetScale)
}

func (d *Director) begin(rect geometry.Rect, targetScale float64) {
	center := rect.Center()
	b := d.vp.ContainerBounds()

	d.offsetX = axis{value: d.vp.Offset.X, target: b.Width/2 - center.X*targetScale}
	d.offsetY = axis{value: d.vp.Offset.Y, target: b.Height/2 - center.Y*targetScale}
	d.scale = axis{value: d.vp.Scale, target: targetScale}
	d.animating = true
}

// Animating reports whether a focus animation is currently running or
// parked waiting for geometry.
func (d *Director) Animating() bool {
	return d.animating || d.pendingID != ""
}

// Step advances the animation by dt seconds and writes the new offset
// and scale to the viewport. It returns true while more steps are
// needed. A deferred focus is retried here first.
func (d *Director) Step(dt float64) bool {
	if d.pendingID != "" {
		rect, ok := d.rectOf(d.pendingID)
		if !ok {
			return true
		}
		scale := d.pendingScale
		d.pendingID = ""
		d.begin(rect, scale)
	}
	if !d.animating {
		return false
	}

	d.offsetX.step(dt)
	d.offsetY.step(dt)
	d.scale.step(dt)

	if d.offsetX.settled() && d.offsetY.settled() && d.scale.settled() {
		d.offsetX.value = d.offsetX.target
		d.offsetY.value = d.offsetY.target
		d.scale.value = d.scale.target
		d.animating = false
	}

	d.vp.Offset = geometry.Point{X: d.offsetX.value, Y: d.offsetY.value}
	d.vp.Scale = d.scale.value
	return d.animating
}

// Cancel drops any running or deferred focus without snapping the
// viewport.
func (d *Director) Cancel() {
	d.animating = false
	d.pendingID = ""
}
