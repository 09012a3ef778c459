package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type feedbackRequest struct {
	CaseID    int    `json:"case_id"`
	SessionID string `json:"session_id"`
	Vote      int    `json:"vote"`
}

// handleFeedback stores a thumbs-up/down vote for a case result.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var body feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "некорректное тело запроса")
		return
	}
	if body.CaseID < 1 || body.CaseID > 7 {
		writeError(w, http.StatusUnprocessableEntity, "case_id должен быть от 1 до 7")
		return
	}
	if body.Vote != 1 && body.Vote != -1 {
		writeError(w, http.StatusUnprocessableEntity, "vote должен быть 1 или -1")
		return
	}
	if body.SessionID == "" {
		writeError(w, http.StatusUnprocessableEntity, "session_id обязателен")
		return
	}

	if err := s.store.SaveFeedback(r.Context(), clientIP(r), body.CaseID, body.SessionID, body.Vote); err != nil {
		s.log.Error("saving feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "не удалось сохранить оценку")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleMetrics returns the aggregated usage view for the backoffice.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summarize(r.Context())
	if err != nil {
		s.log.Error("summarizing metrics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "не удалось получить метрики")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
