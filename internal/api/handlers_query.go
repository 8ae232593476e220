package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	question, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	answer, err := s.rag.Query(r.Context(), question)
	if err != nil {
		s.log.Error("rag query failed", "error", err)
		jsonError(w, "query failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleQueryLLMOnly(w http.ResponseWriter, r *http.Request) {
	question, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	answer, err := s.rag.QueryLLMOnly(r.Context(), question)
	if err != nil {
		s.log.Error("llm-only query failed", "error", err)
		jsonError(w, "query failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) decodeQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return "", false
	}
	return question, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
