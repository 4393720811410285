package canvas

import (
	"math/rand"

	"github.com/prismdocs/atlas/pkg/geometry"
)

// Color is a categorical presentation tag. It is not semantically
// load-bearing anywhere in the engine.
type Color string

const (
	ColorSlate  Color = "slate"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
)

// Colors lists every valid color tag
var Colors = []Color{ColorSlate, ColorYellow, ColorRed, ColorBlue, ColorGreen, ColorOrange}

// Valid reports whether c is a known color tag
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor converts a raw color string, typically from a backend
// response, into a known tag. Unknown strings yield ErrInvalidColor so
// callers choose their own fallback.
func ParseColor(raw string) (Color, error) {
	c := Color(raw)
	if !c.Valid() {
		return "", opError("ParseColor", "color", raw, ErrInvalidColor)
	}
	return c, nil
}

// Default node size used until a real measurement exists
const (
	DefaultNodeWidth  = 320.0
	DefaultNodeHeight = 160.0
)

// PendingMerge is the two-phase state of a synthesis node between
// creation (sources known) and resolution (content generated).
type PendingMerge struct {
	SourceNodeIDs        []string `json:"sourceNodeIds"`
	Suggestions          []string `json:"suggestions"`
	IsLoadingSuggestions bool     `json:"isLoadingSuggestions"`
}

// Node is a visual/content unit on the canvas. Position is the node's
// top-left anchor in canvas coordinates. Width and Height are explicit
// overrides; the measured geometry is authoritative once it exists.
type Node struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     []string       `json:"content"`
	Color       Color          `json:"color"`
	Position    geometry.Point `json:"position"`
	Width       float64        `json:"width,omitempty"`
	Height      float64        `json:"height,omitempty"`
	ConnectedTo []string       `json:"connectedTo"`
	ParentID    string         `json:"parentId,omitempty"`

	PendingMerge *PendingMerge `json:"pendingMerge,omitempty"`

	IsLoading   bool `json:"isLoading,omitempty"`
	IsQueryNode bool `json:"isQueryNode,omitempty"`
}

// FallbackRect returns the node's rect from its explicit size fields,
// used only while no measurement exists yet (first render frame).
func (n *Node) FallbackRect() geometry.Rect {
	w := n.Width
	if w <= 0 {
		w = DefaultNodeWidth
	}
	h := n.Height
	if h <= 0 {
		h = DefaultNodeHeight
	}
	return geometry.Rect{X: n.Position.X, Y: n.Position.Y, Width: w, Height: h}
}

// ConnectedToID reports whether the node has an outgoing edge to target
func (n *Node) ConnectedToID(target string) bool {
	for _, id := range n.ConnectedTo {
		if id == target {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	c := *n
	c.Content = append([]string(nil), n.Content...)
	c.ConnectedTo = append([]string(nil), n.ConnectedTo...)
	if n.PendingMerge != nil {
		pm := *n.PendingMerge
		pm.SourceNodeIDs = append([]string(nil), n.PendingMerge.SourceNodeIDs...)
		pm.Suggestions = append([]string(nil), n.PendingMerge.Suggestions...)
		c.PendingMerge = &pm
	}
	return &c
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewNodeID generates a random base36 identifier. IDs are opaque,
// client-generated, and stable for the node's lifetime.
func NewNodeID() string {
	var b [9]byte
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return "n" + string(b[:])
}
