package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"okrpilot/internal/cases"
	"okrpilot/internal/domain"
	"okrpilot/internal/llm"
)

type caseRequest struct {
	GoalsMap       *domain.GoalsMap `json:"goals_map"`
	SelectedGoalID string           `json:"selected_goal_id"`
	DocxContent    string           `json:"docx_content"`
}

type caseRequestV2 struct {
	MapContext    string `json:"map_context"`
	TargetContext string `json:"target_context"`
}

type chatRequest struct {
	GoalsMap    *domain.GoalsMap `json:"goals_map"`
	DocxContent string           `json:"docx_content"`
	Messages    []llm.Message    `json:"messages"`
}

type chatRequestV2 struct {
	MapContext    string        `json:"map_context"`
	TargetContext string        `json:"target_context"`
	Messages      []llm.Message `json:"messages"`
}

func caseIDParam(r *http.Request) (cases.CaseID, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return cases.CaseID(n), true
}

// handleCase runs a case against a client-supplied whole map.
func (s *Server) handleCase(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok || !id.Valid() {
		writeError(w, http.StatusBadRequest, "номер кейса должен быть от 1 до 7")
		return
	}

	var body caseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "некорректное тело запроса")
		return
	}
	if body.GoalsMap == nil {
		writeError(w, http.StatusUnprocessableEntity, "карта целей обязательна")
		return
	}

	n := int(id)
	s.logUsage(r, "/api/cases/"+strconv.Itoa(n), &n)

	stream, err := s.engine.Run(r.Context(), id, body.GoalsMap, body.SelectedGoalID, body.DocxContent)
	if err != nil {
		s.writeCaseError(w, err)
		return
	}
	streamSSE(w, stream)
}

// handleCaseV2 runs a case against pre-rendered context strings.
func (s *Server) handleCaseV2(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok || !id.Valid() {
		writeError(w, http.StatusBadRequest, "номер кейса должен быть от 1 до 7")
		return
	}

	var body caseRequestV2
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "некорректное тело запроса")
		return
	}

	n := int(id)
	s.logUsage(r, "/api/v2/cases/"+strconv.Itoa(n), &n)

	stream, err := s.engine.RunWithContext(r.Context(), id, body.MapContext, body.TargetContext)
	if err != nil {
		s.writeCaseError(w, err)
		return
	}
	streamSSE(w, stream)
}

func (s *Server) writeCaseError(w http.ResponseWriter, err error) {
	var precondition *cases.PreconditionError
	switch {
	case errors.Is(err, cases.ErrCaseNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &precondition):
		writeError(w, http.StatusUnprocessableEntity, precondition.Error())
	default:
		writeError(w, preStreamStatus(err), streamErrorMessage(err))
	}
}

// handleChat streams a free-chat answer over a client-supplied map.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "некорректное тело запроса")
		return
	}
	if body.GoalsMap == nil {
		writeError(w, http.StatusUnprocessableEntity, "карта целей обязательна")
		return
	}

	s.logUsage(r, "/api/chat", nil)

	stream, err := s.chat.Run(r.Context(), body.GoalsMap, body.Messages, body.DocxContent)
	if err != nil {
		writeError(w, preStreamStatus(err), streamErrorMessage(err))
		return
	}
	streamSSE(w, stream)
}

// handleChatV2 streams a free-chat answer over pre-rendered context.
func (s *Server) handleChatV2(w http.ResponseWriter, r *http.Request) {
	var body chatRequestV2
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "некорректное тело запроса")
		return
	}

	s.logUsage(r, "/api/v2/chat", nil)

	stream, err := s.chat.RunWithContext(r.Context(), body.MapContext, body.TargetContext, body.Messages)
	if err != nil {
		writeError(w, preStreamStatus(err), streamErrorMessage(err))
		return
	}
	streamSSE(w, stream)
}
