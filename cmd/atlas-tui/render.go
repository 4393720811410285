package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
)

// cell is one terminal cell of the rendered canvas
type cell struct {
	r     rune
	style *lipgloss.Style
}

type grid struct {
	cells [][]cell
	w, h  int
}

func newGrid(w, h int) *grid {
	cells := make([][]cell, h)
	for y := range cells {
		cells[y] = make([]cell, w)
		for x := range cells[y] {
			cells[y][x] = cell{r: ' '}
		}
	}
	return &grid{cells: cells, w: w, h: h}
}

func (g *grid) set(x, y int, r rune, style *lipgloss.Style) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = cell{r: r, style: style}
}

func (g *grid) text(x, y int, s string, style *lipgloss.Style) {
	for i, r := range s {
		g.set(x+i, y, r, style)
	}
}

// render flattens the grid, batching runs that share a style
func (g *grid) render() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		x := 0
		for x < g.w {
			style := g.cells[y][x].style
			var run strings.Builder
			for x < g.w && g.cells[y][x].style == style {
				run.WriteRune(g.cells[y][x].r)
				x++
			}
			if style != nil {
				b.WriteString(style.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m model) View() string {
	if m.width == 0 {
		return "Measuring terminal..."
	}

	canvasH := m.height - 2 // status line and help line
	if m.inputOpen {
		canvasH--
	}
	if canvasH < 3 {
		canvasH = 3
	}

	var b strings.Builder
	if m.inputOpen {
		b.WriteString("> " + m.queryInput.View())
		b.WriteByte('\n')
	}
	b.WriteString(m.renderCanvas(m.width, canvasH))
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(
		"g generate  e expand  m merge  d delete  f fit  esc clear  q quit  |  drag to pan/move, ctrl+wheel zoom"))
	return b.String()
}

func (m model) renderCanvas(w, h int) string {
	g := newGrid(w, h)
	vp := m.sess.Viewport()
	selected := make(map[string]bool)
	for _, id := range m.sess.Selection() {
		selected[id] = true
	}

	// Draw from a snapshot: session workers mutate the live nodes
	// under their own lock while this loop runs
	nodes := m.sess.Project().Nodes
	rects := make(map[string]geometry.Rect, len(nodes))
	for _, n := range nodes {
		rects[n.ID] = n.FallbackRect()
	}

	// Keep the geometry store in step with what we draw so hit tests
	// and camera focus see the same rects
	m.sess.SyncGeometry(rects)

	for _, n := range nodes {
		for _, target := range n.ConnectedTo {
			tr, ok := rects[target]
			if !ok {
				continue
			}
			m.drawEdge(g, vp, rects[n.ID].Center(), tr.Center())
		}
	}
	for _, n := range nodes {
		m.drawNode(g, vp, n, rects[n.ID], selected[n.ID])
	}

	if box, ok := m.gest.Marquee(); ok {
		m.drawMarquee(g, vp, box)
	}
	if start, current, _, ok := m.gest.EdgeDrag(); ok {
		m.drawEdge(g, vp, start, current)
	}
	return g.render()
}

func (m model) drawNode(g *grid, vp viewportConverter, n *canvas.Node, r geometry.Rect, isSelected bool) {
	x0, y0 := toCell(vp.ToScreen(geometry.Point{X: r.X, Y: r.Y}))
	x1, y1 := toCell(vp.ToScreen(geometry.Point{X: r.X + r.Width, Y: r.Y + r.Height}))
	if x1-x0 < 2 {
		x1 = x0 + 2
	}
	if y1-y0 < 2 {
		y1 = y0 + 2
	}

	style := styleFor(n, isSelected)

	for x := x0; x <= x1; x++ {
		g.set(x, y0, '─', style)
		g.set(x, y1, '─', style)
	}
	for y := y0; y <= y1; y++ {
		g.set(x0, y, '│', style)
		g.set(x1, y, '│', style)
	}
	g.set(x0, y0, '┌', style)
	g.set(x1, y0, '┐', style)
	g.set(x0, y1, '└', style)
	g.set(x1, y1, '┘', style)

	inner := x1 - x0 - 1
	if inner < 1 {
		return
	}
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			g.set(x, y, ' ', style)
		}
	}

	title := n.Title
	if n.IsLoading {
		title = "… " + title
	}
	g.text(x0+1, y0+1, clip(title, inner), style)

	line := y0 + 2
	if n.PendingMerge != nil {
		label := "merge pending"
		if n.PendingMerge.IsLoadingSuggestions {
			label = "merge: thinking…"
		} else if len(n.PendingMerge.Suggestions) > 0 {
			label = "merge: " + n.PendingMerge.Suggestions[0]
		}
		g.text(x0+1, line, clip(label, inner), style)
		line++
	}
	for _, content := range n.Content {
		if line >= y1 {
			break
		}
		g.text(x0+1, line, clip(content, inner), style)
		line++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (m model) drawEdge(g *grid, vp viewportConverter, a, b geometry.Point) {
	ax, ay := toCell(vp.ToScreen(a))
	bx, by := toCell(vp.ToScreen(b))

	steps := abs(bx-ax)
	if abs(by-ay) > steps {
		steps = abs(by - ay)
	}
	if steps == 0 {
		return
	}
	for i := 0; i <= steps; i++ {
		x := ax + (bx-ax)*i/steps
		y := ay + (by-ay)*i/steps
		g.set(x, y, '·', &helpStyle)
	}
}

func (m model) drawMarquee(g *grid, vp viewportConverter, box geometry.Rect) {
	x0, y0 := toCell(vp.ToScreen(geometry.Point{X: box.X, Y: box.Y}))
	x1, y1 := toCell(vp.ToScreen(geometry.Point{X: box.X + box.Width, Y: box.Y + box.Height}))
	for x := x0; x <= x1; x++ {
		g.set(x, y0, '·', &marqueeStyle)
		g.set(x, y1, '·', &marqueeStyle)
	}
	for y := y0; y <= y1; y++ {
		g.set(x0, y, '·', &marqueeStyle)
		g.set(x1, y, '·', &marqueeStyle)
	}
}

func (m model) renderStatus() string {
	msg := m.message
	style := statusStyle
	if m.messageErr {
		style = errorStyle
	}
	left := style.Render(msg)
	right := statusStyle.Render(fmt.Sprintf("nodes %d  selected %d  zoom %.0f%%  rev %d",
		len(m.sess.Nodes()), len(m.sess.Selection()),
		m.sess.Viewport().Scale*100, m.sess.Revision()))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// viewportConverter is the slice of the viewport the renderer needs
type viewportConverter interface {
	ToScreen(p geometry.Point) (float64, float64)
}

func toCell(sx, sy float64) (int, int) {
	return int(sx / cellWidth), int(sy / cellHeight)
}

func styleFor(n *canvas.Node, isSelected bool) *lipgloss.Style {
	if isSelected {
		return &selectedStyle
	}
	if s, ok := colorStyles[string(n.Color)]; ok {
		return &s
	}
	return &statusStyle
}

func clip(s string, w int) string {
	if w <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(runes[:w-1]) + "…"
}
