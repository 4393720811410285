package api

import (
	"net/http"

	"github.com/prismdocs/atlas/pkg/geometry"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}

	queryNodeID, err := sess.GenerateFromQuery(req.Query, req.Stream)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	// Generated nodes arrive via the session's event stream
	s.respondJSON(w, http.StatusAccepted, GenerateResponse{
		SessionID:   sess.ID(),
		QueryNodeID: queryNodeID,
	})
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req CreateNodeRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := sess.CreateConnectedNode(req.SourceID, req.Prompt, geometry.Point{X: req.X, Y: req.Y})
	if err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, CreateNodeResponse{NodeID: id})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req ExpandRequest
	if !s.decode(w, r, &req) {
		return
	}

	ids, err := sess.ExpandNode(r.PathValue("nodeID"), req.Query)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, ExpandResponse{NodeIDs: ids})
}

func (s *Server) handleExpandSuggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	suggestions, err := sess.SuggestExpand(r.PathValue("nodeID"))
	if err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := sess.MoveNode(r.PathValue("nodeID"), geometry.Point{X: req.X, Y: req.Y}); err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, SessionResponse{SessionID: sess.ID(), Revision: sess.Revision()})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteNode(r.PathValue("nodeID")); err != nil {
		s.mutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInitiateMerge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req MergeRequest
	if !s.decode(w, r, &req) {
		return
	}

	pendingID, err := sess.InitiateMerge(req.NodeIDs)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, MergeResponse{PendingNodeID: pendingID})
}

func (s *Server) handleResolveMerge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req ResolveMergeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := sess.ResolveMerge(r.PathValue("nodeID"), req.Query); err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, SessionResponse{SessionID: sess.ID(), Revision: sess.Revision()})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if !s.decode(w, r, &req) {
		return
	}

	var err error
	if len(req.NodeIDs) == 1 {
		err = sess.SelectNode(req.NodeIDs[0], req.Additive)
	} else {
		err = sess.SelectNodes(req.NodeIDs, req.Additive)
	}
	if err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, GraphResponse{
		SessionID: sess.ID(),
		Revision:  sess.Revision(),
		Selection: sess.Selection(),
	})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	if err := sess.ClearSelection(); err != nil {
		s.mutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	removed, err := sess.DeleteSelected()
	if err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, DeleteResponse{Removed: removed})
}
