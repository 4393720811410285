package session

import (
	"errors"
	"strings"

	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/layout"
	"github.com/prismdocs/atlas/pkg/logging"
)

// Spacing for expand fan-out rows
const (
	expandSpacingX = 360.0
	expandGapY     = 80.0
)

// ErrTooFewSources rejects a merge over fewer than two nodes
var ErrTooFewSources = errors.New("merge requires at least two source nodes")

func nodeContext(n *canvas.Node) backend.NodeContext {
	return backend.NodeContext{
		Title:   n.Title,
		Content: strings.Join(n.Content, "\n"),
	}
}

func generatedColor(raw string) canvas.Color {
	c, err := canvas.ParseColor(raw)
	if err != nil {
		return canvas.ColorBlue
	}
	return c
}

// CreateConnectedNode asks the backend for a node from the prompt and
// appends it at the drop position, connected to the source. A backend
// failure leaves the source node and the graph unmodified.
func (s *Session) CreateConnectedNode(sourceID, prompt string, anchor geometry.Point) (string, error) {
	s.mu.Lock()
	src := s.graph.Node(sourceID)
	if src == nil {
		s.mu.Unlock()
		return "", canvas.ErrNodeNotFound
	}
	req := backend.CreateNodeRequest{
		Prompt:    prompt,
		Parent:    &backend.NodeContext{Title: src.Title, Content: strings.Join(src.Content, "\n")},
		Documents: append([]backend.Document(nil), s.documents...),
	}
	s.mu.Unlock()

	resp, err := s.backend.CreateNodeFromPrompt(s.ctx, req)
	if err != nil {
		s.logger.Error("create node failed", logging.NodeID(sourceID), logging.Error(err))
		return "", err
	}

	id := canvas.NewNodeID()
	err = s.apply("create_node", func() error {
		n := &canvas.Node{
			ID:       id,
			Title:    resp.Node.Title,
			Content:  resp.Node.Content,
			Color:    generatedColor(resp.Node.Color),
			Position: anchor,
			ParentID: sourceID,
		}
		return s.graph.AddConnected(n, sourceID)
	})
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.camera.FocusOnNode(id, 0)
	s.mu.Unlock()
	return id, nil
}

// ExpandNode fans a node out into backend-suggested children laid out
// in a centered row beneath it, all connected to the parent.
func (s *Session) ExpandNode(nodeID, query string) ([]string, error) {
	s.mu.Lock()
	parent := s.graph.Node(nodeID)
	if parent == nil {
		s.mu.Unlock()
		return nil, canvas.ErrNodeNotFound
	}
	req := backend.ExpandRequest{
		Node:      nodeContext(parent),
		Documents: append([]backend.Document(nil), s.documents...),
		Query:     query,
	}
	s.mu.Unlock()

	resp, err := s.backend.ExpandNode(s.ctx, req)
	if err != nil {
		s.logger.Error("expand failed", logging.NodeID(nodeID), logging.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(resp.Nodes))
	err = s.apply("expand_node", func() error {
		parent := s.graph.Node(nodeID)
		if parent == nil {
			return canvas.ErrNodeNotFound
		}
		parentRect := s.geometry.RectOf(parent)
		size := geometry.Size{Width: canvas.DefaultNodeWidth, Height: canvas.DefaultNodeHeight}
		positions := layout.ExpandRow(parentRect, len(resp.Nodes), size, expandSpacingX, expandGapY)

		for i, data := range resp.Nodes {
			n := &canvas.Node{
				ID:       canvas.NewNodeID(),
				Title:    data.Title,
				Content:  data.Content,
				Color:    generatedColor(data.Color),
				Position: positions[i],
				ParentID: nodeID,
			}
			if err := s.graph.AddConnected(n, nodeID); err != nil {
				return err
			}
			ids = append(ids, n.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SuggestExpand returns expansion directives for a node, serving the
// static fallback set when the backend call fails.
func (s *Session) SuggestExpand(nodeID string) ([]string, error) {
	s.mu.Lock()
	n := s.graph.Node(nodeID)
	if n == nil {
		s.mu.Unlock()
		return nil, canvas.ErrNodeNotFound
	}
	req := backend.SuggestExpandRequest{
		Node:      nodeContext(n),
		Documents: append([]backend.Document(nil), s.documents...),
	}
	title := n.Title
	s.mu.Unlock()

	resp, err := s.backend.SuggestExpand(s.ctx, req)
	if err != nil {
		s.logger.Warn("expand suggestions failed, using fallback",
			logging.NodeID(nodeID), logging.Error(err))
		s.metrics.RecordBackendFallback("expand_suggest")
		return backend.FallbackExpandSuggestions(title), nil
	}
	return resp.Suggestions, nil
}

// InitiateMerge synchronously creates a pending-merge node joined to
// every source, places it collision-free around the selection bounds,
// focuses the camera on it, and kicks off the async suggestion fetch.
func (s *Session) InitiateMerge(sourceIDs []string) (string, error) {
	id := canvas.NewNodeID()

	err := s.apply("initiate_merge", func() error {
		if len(sourceIDs) < 2 {
			return ErrTooFewSources
		}
		rects := make([]geometry.Rect, 0, len(sourceIDs))
		for _, srcID := range sourceIDs {
			src := s.graph.Node(srcID)
			if src == nil {
				return canvas.ErrNodeNotFound
			}
			rects = append(rects, s.geometry.RectOf(src))
		}

		size := geometry.Size{Width: canvas.DefaultNodeWidth, Height: canvas.DefaultNodeHeight}
		obstacles := s.geometry.Rects(s.graph.Nodes())

		// An edge-drop pair places beside the dragged-from node; a
		// multi-selection evaluates all four sides of its bounds
		var placement layout.Placement
		if len(sourceIDs) == 2 {
			placement = layout.ProposePosition(rects[0], size, layout.CollisionPadding, obstacles)
		} else {
			box, _ := geometry.BoundingBox(rects)
			placement = layout.ProposeMergePosition(box, size, layout.CollisionPadding, obstacles)
		}

		n := &canvas.Node{
			ID:       id,
			Title:    "Merging nodes",
			Color:    canvas.ColorSlate,
			Position: placement.Position,
			PendingMerge: &canvas.PendingMerge{
				SourceNodeIDs:        append([]string(nil), sourceIDs...),
				IsLoadingSuggestions: true,
			},
		}
		if err := s.graph.Add(n); err != nil {
			return err
		}
		for _, srcID := range sourceIDs {
			if err := s.graph.Connect(id, srcID); err != nil {
				return err
			}
		}
		s.camera.FocusOnNode(id, 0)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.fetchMergeSuggestions(id, sourceIDs)
	return id, nil
}

// fetchMergeSuggestions populates the pending node's suggestion list
// asynchronously, with the static fallback on failure.
func (s *Session) fetchMergeSuggestions(pendingID string, sourceIDs []string) {
	s.mu.Lock()
	contexts := make([]backend.NodeContext, 0, len(sourceIDs))
	for _, srcID := range sourceIDs {
		if src := s.graph.Node(srcID); src != nil {
			contexts = append(contexts, nodeContext(src))
		}
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		suggestions := backend.FallbackMergeSuggestions()
		resp, err := s.backend.SuggestMerge(s.ctx, backend.SuggestMergeRequest{Nodes: contexts})
		if err != nil {
			s.logger.Warn("merge suggestions failed, using fallback",
				logging.NodeID(pendingID), logging.Error(err))
			s.metrics.RecordBackendFallback("merge_suggest")
		} else {
			suggestions = resp.Suggestions
		}

		s.apply("merge_suggestions", func() error {
			n := s.graph.Node(pendingID)
			if n == nil || n.PendingMerge == nil {
				// Deleted or already resolved while we were waiting
				return nil
			}
			n.PendingMerge.Suggestions = suggestions
			n.PendingMerge.IsLoadingSuggestions = false
			return nil
		})
	}()
}

// ResolveMerge synthesizes the pending node's sources into its final
// content. Identity and existing edges survive; a backend failure
// leaves the node pending.
func (s *Session) ResolveMerge(pendingID, query string) error {
	s.mu.Lock()
	n := s.graph.Node(pendingID)
	if n == nil {
		s.mu.Unlock()
		return canvas.ErrNodeNotFound
	}
	if n.PendingMerge == nil {
		s.mu.Unlock()
		return canvas.ErrNotPending
	}
	contexts := make([]backend.NodeContext, 0, len(n.PendingMerge.SourceNodeIDs))
	for _, srcID := range n.PendingMerge.SourceNodeIDs {
		if src := s.graph.Node(srcID); src != nil {
			contexts = append(contexts, nodeContext(src))
		}
	}
	s.mu.Unlock()

	resp, err := s.backend.MergeNodes(s.ctx, backend.MergeRequest{Nodes: contexts, Query: query})
	if err != nil {
		s.logger.Error("merge failed", logging.NodeID(pendingID), logging.Error(err))
		return err
	}

	err = s.apply("resolve_merge", func() error {
		return s.graph.ResolveMerge(pendingID, resp.Node.Title, resp.Node.Content, canvas.Color(resp.Node.Color))
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.camera.FocusOnNode(pendingID, 0)
	s.mu.Unlock()
	return nil
}

// DeleteNode removes a node, cleans every edge referencing it, and
// drops it from the selection
func (s *Session) DeleteNode(id string) error {
	return s.apply("delete_node", func() error {
		if err := s.graph.Delete(id); err != nil {
			return err
		}
		s.geometry.Delete(id)
		s.selection.Remove(id)
		return nil
	})
}

// DeleteSelected removes every selected node in one pass
func (s *Session) DeleteSelected() (int, error) {
	var removed int
	err := s.apply("delete_selected", func() error {
		ids := s.selection.IDs()
		removed = s.graph.DeleteAll(ids)
		for _, id := range ids {
			s.geometry.Delete(id)
		}
		s.selection.Clear()
		return nil
	})
	return removed, err
}

// SelectNode selects one node, optionally adding to the existing
// selection. A plain single-selection focuses the camera.
func (s *Session) SelectNode(id string, additive bool) error {
	return s.apply("select", func() error {
		if !s.graph.Has(id) {
			return canvas.ErrNodeNotFound
		}
		if additive {
			s.selection.Toggle(id)
		} else {
			s.selection.Replace([]string{id})
			s.camera.FocusOnNode(id, 0)
		}
		return nil
	})
}

// SelectNodes applies a marquee result
func (s *Session) SelectNodes(ids []string, additive bool) error {
	return s.apply("select", func() error {
		live := make([]string, 0, len(ids))
		for _, id := range ids {
			if s.graph.Has(id) {
				live = append(live, id)
			}
		}
		if additive {
			s.selection.Union(live)
		} else {
			s.selection.Replace(live)
		}
		return nil
	})
}

// ClearSelection deselects everything
func (s *Session) ClearSelection() error {
	return s.apply("clear_selection", func() error {
		s.selection.Clear()
		return nil
	})
}

// MoveNode commits a drag's final position
func (s *Session) MoveNode(id string, p geometry.Point) error {
	return s.apply("move_node", func() error {
		n := s.graph.Node(id)
		if n == nil {
			return canvas.ErrNodeNotFound
		}
		n.Position = p
		return nil
	})
}

// ConnectNodes adds an edge between two existing nodes
func (s *Session) ConnectNodes(sourceID, targetID string) error {
	return s.apply("connect", func() error {
		return s.graph.Connect(sourceID, targetID)
	})
}
