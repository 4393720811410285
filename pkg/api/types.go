package api

import (
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/session"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse reports process health
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

// SessionResponse identifies a session and its current revision
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Revision  uint64 `json:"revision"`
}

// GraphResponse is the canvas state after a mutation
type GraphResponse struct {
	SessionID string         `json:"sessionId"`
	Revision  uint64         `json:"revision"`
	Nodes     []*canvas.Node `json:"nodes"`
	Selection []string       `json:"selection"`
}

// ProjectResponse wraps a loadable project
type ProjectResponse struct {
	SessionID string          `json:"sessionId"`
	Revision  uint64          `json:"revision"`
	Project   session.Project `json:"project"`
}

// GenerateRequest starts graph generation from a query
type GenerateRequest struct {
	Query  string `json:"query" validate:"required"`
	Stream bool   `json:"stream"`
}

// GenerateResponse returns the query node that anchors the incoming
// graph; the generated nodes arrive through the event stream
type GenerateResponse struct {
	SessionID   string `json:"sessionId"`
	QueryNodeID string `json:"queryNodeId"`
}

// ExpandRequest fans a node out into children
type ExpandRequest struct {
	Query string `json:"query"`
}

// ExpandResponse lists the created children
type ExpandResponse struct {
	NodeIDs []string `json:"nodeIds"`
}

// SuggestResponse carries suggestion strings for expand or merge
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// MergeRequest starts a merge over the named nodes
type MergeRequest struct {
	NodeIDs []string `json:"nodeIds" validate:"required,min=2"`
}

// MergeResponse returns the pending merge node id
type MergeResponse struct {
	PendingNodeID string `json:"pendingNodeId"`
}

// ResolveMergeRequest finalizes a pending merge with a directive
type ResolveMergeRequest struct {
	Query string `json:"query" validate:"required"`
}

// CreateNodeRequest creates a node from a prompt, connected to a
// source node and anchored at a canvas position
type CreateNodeRequest struct {
	SourceID string  `json:"sourceId" validate:"required"`
	Prompt   string  `json:"prompt" validate:"required"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// CreateNodeResponse returns the created node id
type CreateNodeResponse struct {
	NodeID string `json:"nodeId"`
}

// SelectRequest updates the selection
type SelectRequest struct {
	NodeIDs  []string `json:"nodeIds"`
	Additive bool     `json:"additive"`
}

// MoveRequest commits a node position
type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DeleteResponse reports how many nodes were removed
type DeleteResponse struct {
	Removed int `json:"removed"`
}
