package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"okrpilot/internal/llm"
	"okrpilot/internal/targets"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// upstreamStatus maps Targets client failures to an HTTP status.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, targets.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, targets.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, targets.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, targets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, targets.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, targets.ErrBadPayload):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// preStreamStatus maps failures raised before streaming begins.
func preStreamStatus(err error) int {
	if errors.Is(err, llm.ErrContextOverflow) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
