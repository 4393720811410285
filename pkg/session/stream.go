package session

import (
	"fmt"

	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/layout"
	"github.com/prismdocs/atlas/pkg/logging"
)

// GenerateFromQuery creates the query node immediately and fills the
// canvas beneath it from the backend in the background. With streaming
// enabled nodes land one at a time as frames arrive; otherwise the
// whole batch lands at once when the response comes back. The query
// node id is returned as soon as the placeholder exists.
func (s *Session) GenerateFromQuery(query string, streaming bool) (string, error) {
	id := canvas.NewNodeID()

	err := s.apply("create_query_node", func() error {
		vp := s.viewport.ContainerBounds()
		center := s.viewport.ToCanvas(vp.Left+vp.Width/2, vp.Top+vp.Height/3)
		n := &canvas.Node{
			ID:          id,
			Title:       query,
			Content:     []string{"Analyzing documents..."},
			Color:       canvas.ColorSlate,
			Position:    center,
			IsLoading:   true,
			IsQueryNode: true,
		}
		if err := s.graph.Add(n); err != nil {
			return err
		}
		s.camera.FocusOnNode(id, 0)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	docs := append([]backend.Document(nil), s.documents...)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if streaming {
			s.runStream(id, query, docs)
		} else {
			s.runGenerate(id, query, docs)
		}
	}()
	return id, nil
}

// runStream consumes the SSE generate stream, placing each node on the
// grid below the query node as its frame arrives. A mid-stream error
// keeps every node already placed.
func (s *Session) runStream(queryID, query string, docs []backend.Document) {
	delivered := 0
	err := s.backend.GenerateGraphStream(s.ctx,
		backend.GenerateRequest{Query: query, Documents: docs},
		func(data backend.NodeData, index, total int) error {
			return s.apply("stream_node", func() error {
				qn := s.graph.Node(queryID)
				if qn == nil {
					return canvas.ErrNodeNotFound
				}
				center := s.geometry.RectOf(qn).Center()
				size := geometry.Size{Width: canvas.DefaultNodeWidth, Height: canvas.DefaultNodeHeight}
				n := &canvas.Node{
					ID:       canvas.NewNodeID(),
					Title:    data.Title,
					Content:  data.Content,
					Color:    generatedColor(data.Color),
					Position: layout.StreamPosition(center, index, total, size),
					ParentID: queryID,
				}
				if err := s.graph.AddConnected(n, queryID); err != nil {
					return err
				}
				delivered++
				if delivered == 1 {
					s.camera.FocusOnNode(n.ID, 0)
				}
				return nil
			})
		})

	if err != nil {
		s.logger.Error("generate stream failed",
			logging.NodeID(queryID), logging.Count(delivered), logging.Error(err))
		s.failQueryNode(queryID, err)
		return
	}
	s.logger.Info("generate stream complete",
		logging.NodeID(queryID), logging.Count(delivered))
	s.settleQueryNode(queryID, len(docs))
}

// runGenerate is the non-streaming batch path
func (s *Session) runGenerate(queryID, query string, docs []backend.Document) {
	resp, err := s.backend.GenerateGraph(s.ctx, backend.GenerateRequest{Query: query, Documents: docs})
	if err != nil {
		s.logger.Error("generate failed", logging.NodeID(queryID), logging.Error(err))
		s.failQueryNode(queryID, err)
		return
	}

	s.apply("generate", func() error {
		qn := s.graph.Node(queryID)
		if qn == nil {
			return canvas.ErrNodeNotFound
		}
		center := s.geometry.RectOf(qn).Center()
		size := geometry.Size{Width: canvas.DefaultNodeWidth, Height: canvas.DefaultNodeHeight}
		total := len(resp.Nodes)
		for i, data := range resp.Nodes {
			n := &canvas.Node{
				ID:       canvas.NewNodeID(),
				Title:    data.Title,
				Content:  data.Content,
				Color:    generatedColor(data.Color),
				Position: layout.StreamPosition(center, i, total, size),
				ParentID: queryID,
			}
			if err := s.graph.AddConnected(n, queryID); err != nil {
				return err
			}
		}
		return nil
	})
	s.settleQueryNode(queryID, len(docs))
}

// settleQueryNode clears the loading state and writes the document
// summary once ingestion completes.
func (s *Session) settleQueryNode(queryID string, docCount int) {
	s.apply("query_settled", func() error {
		qn := s.graph.Node(queryID)
		if qn == nil {
			return nil
		}
		qn.IsLoading = false
		qn.Content = []string{fmt.Sprintf("%d documents analyzed", docCount)}
		return nil
	})
}

// failQueryNode is the error terminal state: loading cleared, the node
// turned red with the failure message in place of the summary. Any
// children already placed stay on the canvas.
func (s *Session) failQueryNode(queryID string, cause error) {
	s.apply("query_failed", func() error {
		qn := s.graph.Node(queryID)
		if qn == nil {
			return nil
		}
		qn.IsLoading = false
		qn.Color = canvas.ColorRed
		qn.Content = []string{"Failed to generate nodes: " + cause.Error()}
		return nil
	})
}
