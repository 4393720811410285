package backend

import (
	"encoding/json"
	"strings"
)

// Document is one unit of source material sent for context
type Document struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content"`
}

// ContentLines is a node body as an ordered list of bullet strings.
// The backend returns either a JSON array or a single newline-joined
// string depending on the generation path, so both decode.
type ContentLines []string

func (c *ContentLines) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*c = lines
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*c = nil
	for _, line := range strings.Split(joined, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			*c = append(*c, line)
		}
	}
	return nil
}

// NodeData is generated node content before it becomes a canvas node
type NodeData struct {
	Title   string       `json:"title" validate:"required"`
	Content ContentLines `json:"content"`
	Color   string       `json:"color" validate:"omitempty,oneof=slate yellow red blue green orange"`
}

// NodeContext is an existing node's content sent back for context
type NodeContext struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

// GenerateRequest asks for a fresh node set from a query
type GenerateRequest struct {
	Query     string     `json:"query" validate:"required"`
	Documents []Document `json:"documents"`
}

// GenerateResponse carries the generated node set
type GenerateResponse struct {
	Nodes []NodeData `json:"nodes" validate:"required,min=1,dive"`
}

// ExpandRequest asks for child nodes of an existing node
type ExpandRequest struct {
	Node      NodeContext `json:"node" validate:"required"`
	Documents []Document  `json:"documents"`
	Query     string      `json:"query,omitempty"`
}

// MergeRequest asks for one synthesis of two or more nodes
type MergeRequest struct {
	Nodes []NodeContext `json:"nodes" validate:"required,min=2,dive"`
	Query string        `json:"query,omitempty"`
}

// MergeResponse carries the synthesized node
type MergeResponse struct {
	Node NodeData `json:"node" validate:"required"`
}

// SuggestRequest asks for short suggestion strings for a merge
type SuggestMergeRequest struct {
	Nodes []NodeContext `json:"nodes" validate:"required,min=2,dive"`
}

// SuggestExpandRequest asks for expansion directives for a node
type SuggestExpandRequest struct {
	Node      NodeContext `json:"node" validate:"required"`
	Documents []Document  `json:"documents"`
}

// SuggestResponse carries suggestion strings
type SuggestResponse struct {
	Suggestions []string `json:"suggestions" validate:"required,min=1"`
}

// CreateNodeRequest asks for a single node from a free-form prompt
type CreateNodeRequest struct {
	Prompt    string       `json:"prompt" validate:"required"`
	Parent    *NodeContext `json:"parent,omitempty"`
	Documents []Document   `json:"documents"`
}

// CreateNodeResponse carries the created node
type CreateNodeResponse struct {
	Node NodeData `json:"node" validate:"required"`
}

// Stream frame types
const (
	FrameNode  = "node"
	FrameDone  = "done"
	FrameError = "error"
)

// StreamFrame is one SSE event from the streaming generate endpoint
type StreamFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Index int             `json:"index"`
	Total int             `json:"total"`
}

type streamErrorData struct {
	Message string `json:"message"`
}
