package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"okrpilot/internal/contextbuild"
	"okrpilot/internal/domain"
	"okrpilot/internal/targets"
)

type mapsResponse struct {
	Maps    []domain.MapSummary `json:"maps"`
	Periods []string            `json:"periods"`
	Error   string              `json:"error,omitempty"`
}

// handleMaps lists the maps available upstream, memoized per session.
// A missing upstream configuration is reported in-body so the UI can
// fall back to manual upload.
func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.cache.GetOrFetchMaps(r.Context(), sessionID(r))
	if err != nil {
		if errors.Is(err, targets.ErrNotConfigured) {
			writeJSON(w, http.StatusOK, mapsResponse{
				Maps:    []domain.MapSummary{},
				Periods: []string{},
				Error:   err.Error(),
			})
			return
		}
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	periods := []string{}
	seen := map[string]bool{}
	for _, m := range maps {
		if m.PeriodLabel != "" && !seen[m.PeriodLabel] {
			seen[m.PeriodLabel] = true
			periods = append(periods, m.PeriodLabel)
		}
	}

	writeJSON(w, http.StatusOK, mapsResponse{Maps: maps, Periods: periods})
}

type contextResponse struct {
	ID      int    `json:"id"`
	Context string `json:"context"`
	Tokens  int    `json:"tokens"`
}

// handleMapContext renders the flat LLM context of one map from the
// session-cached graph.
func (s *Server) handleMapContext(w http.ResponseWriter, r *http.Request) {
	mapID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный идентификатор карты")
		return
	}

	session := sessionID(r)
	graph, err := s.cache.GetOrFetchMapGraph(r.Context(), session, mapID)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	// The period label lives on the maps listing, not the graph.
	periodLabel := ""
	if maps, err := s.cache.GetOrFetchMaps(r.Context(), session); err == nil {
		for _, m := range maps {
			if m.ID == mapID {
				periodLabel = m.PeriodLabel
				break
			}
		}
	}

	text := contextbuild.BuildMapContext(graph.Nodes, graph.Map, periodLabel)
	writeJSON(w, http.StatusOK, contextResponse{
		ID:      mapID,
		Context: text,
		Tokens:  contextbuild.EstimateTokens(text, s.model),
	})
}

// handleTargetContext renders the context of a single goal with its
// key results.
func (s *Server) handleTargetContext(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный идентификатор цели")
		return
	}

	bundle, err := s.cache.GetOrFetchTarget(r.Context(), sessionID(r), targetID)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	text := contextbuild.BuildTargetContext(*bundle.Target, bundle.KeyResults)
	writeJSON(w, http.StatusOK, contextResponse{
		ID:      targetID,
		Context: text,
		Tokens:  contextbuild.EstimateTokens(text, s.model),
	})
}
