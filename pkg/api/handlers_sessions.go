package api

import (
	"errors"
	"net/http"

	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/session"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Open("")
	s.logger.Info("session created", logging.SessionID(sess.ID()))
	s.respondJSON(w, http.StatusCreated, SessionResponse{
		SessionID: sess.ID(),
		Revision:  sess.Revision(),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.manager.Close(r.PathValue("id")) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, ProjectResponse{
		SessionID: sess.ID(),
		Revision:  sess.Revision(),
		Project:   sess.Project(),
	})
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	// PUT creates the session on first use so a project load is one call
	sess := s.manager.Open(r.PathValue("id"))

	var project session.Project
	if !s.decode(w, r, &project) {
		return
	}
	if err := sess.LoadProject(project); err != nil {
		s.mutationError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, SessionResponse{
		SessionID: sess.ID(),
		Revision:  sess.Revision(),
	})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, GraphResponse{
		SessionID: sess.ID(),
		Revision:  sess.Revision(),
		Nodes:     sess.Project().Nodes,
		Selection: sess.Selection(),
	})
}

// mutationError maps engine errors onto HTTP statuses
func (s *Server) mutationError(w http.ResponseWriter, err error) {
	var reqErr *backend.RequestError
	switch {
	case errors.Is(err, canvas.ErrNodeNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, canvas.ErrNotPending),
		errors.Is(err, canvas.ErrSelfEdge),
		errors.Is(err, canvas.ErrDuplicateNode),
		errors.Is(err, session.ErrTooFewSources):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, canvas.ErrSessionClosed):
		s.respondError(w, http.StatusGone, err.Error())
	case errors.As(err, &reqErr):
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
