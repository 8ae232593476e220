package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.log.Error("vector store count failed", "error", err)
		jsonError(w, "vector store unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chunks":      count,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
