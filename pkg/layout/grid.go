package layout

import (
	"github.com/prismdocs/atlas/pkg/geometry"
)

// Streaming grid constants: incoming nodes fill rows of four, each row
// horizontally centered under the query node.
const (
	NodesPerRow     = 4
	StreamSpacingX  = 380.0
	StreamRowHeight = 280.0
	StreamTopMargin = 220.0
)

// StreamSlot returns the row and column for the index-th streamed node
func StreamSlot(index int) (row, col int) {
	return index / NodesPerRow, index % NodesPerRow
}

// StreamOffset returns the horizontal center offset of the index-th
// streamed node relative to the grid center. Each row is centered
// independently: a full row of four sits at {-570, -190, 190, 570},
// a final row of one sits at 0.
func StreamOffset(index, total int) float64 {
	row, col := StreamSlot(index)
	start := row * NodesPerRow
	count := total - start
	if count > NodesPerRow {
		count = NodesPerRow
	}
	if count < 1 {
		count = 1
	}
	return (float64(col) - float64(count-1)/2) * StreamSpacingX
}

// StreamPosition computes the top-left anchor of the index-th streamed
// node of the given size, laid out below the grid center point.
func StreamPosition(center geometry.Point, index, total int, size geometry.Size) geometry.Point {
	row, _ := StreamSlot(index)
	return geometry.Point{
		X: center.X + StreamOffset(index, total) - size.Width/2,
		Y: center.Y + StreamTopMargin + float64(row)*StreamRowHeight,
	}
}

// ExpandRow lays out n children in a single row beneath the parent,
// horizontally centered on the parent's midpoint with fixed spacing.
func ExpandRow(parent geometry.Rect, n int, childSize geometry.Size, spacingX, gapY float64) []geometry.Point {
	if n <= 0 {
		return nil
	}
	centerX := parent.X + parent.Width/2
	totalWidth := float64(n-1) * spacingX
	startX := centerX - totalWidth/2 - childSize.Width/2
	y := parent.Bottom() + gapY

	out := make([]geometry.Point, n)
	for i := range out {
		out[i] = geometry.Point{X: startX + float64(i)*spacingX, Y: y}
	}
	return out
}
