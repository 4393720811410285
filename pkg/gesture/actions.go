package gesture

import "github.com/prismdocs/atlas/pkg/geometry"

// Action is the terminal result of a resolved gesture. The owning
// session interprets it into a graph or selection mutation.
type Action interface {
	isAction()
}

// ActionNone resolves a gesture with no effect
type ActionNone struct{}

// ActionClearSelection clears the selection after an empty-space click
type ActionClearSelection struct{}

// ActionSelectNodes selects the nodes intersecting a marquee box.
// Additive unions with the existing selection instead of replacing it.
type ActionSelectNodes struct {
	IDs      []string
	Additive bool
}

// ActionNodeClick is an in-place click on a node body (no drag)
type ActionNodeClick struct {
	NodeID   string
	Additive bool
}

// ActionCommitDrag commits a node's final position after a drag
type ActionCommitDrag struct {
	NodeID   string
	Position geometry.Point
}

// ActionConnectDrop is an edge released over another node; it initiates
// the two-way merge flow
type ActionConnectDrop struct {
	SourceID string
	TargetID string
	Side     Side
}

// ActionOpenNodeInput is an edge released over blank space; it opens a
// new-node input anchored at the release point, pre-wired to connect
// back to the source on submission
type ActionOpenNodeInput struct {
	SourceID string
	Side     Side
	Anchor   geometry.Point
}

func (ActionNone) isAction()           {}
func (ActionClearSelection) isAction() {}
func (ActionSelectNodes) isAction()    {}
func (ActionNodeClick) isAction()      {}
func (ActionCommitDrag) isAction()     {}
func (ActionConnectDrop) isAction()    {}
func (ActionOpenNodeInput) isAction()  {}
