package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prismdocs/atlas/pkg/logging"
)

// handleEvents streams session commit events as SSE. One event goes
// out per committed revision; clients refetch the graph when they see
// a revision ahead of their own.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := s.manager.Bus().Subscribe(r.Context(), sess.ID())
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "event bus closed")
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.logger.Info("event stream opened", logging.SessionID(sess.ID()))
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("event stream closed", logging.SessionID(sess.ID()))
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("event encoding failed", logging.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
