package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/draft"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

// ErrorResponse is the error shape for every API error
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, status, resp)
}

// writeServiceError maps draft and service errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "TEAM_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", err.Error())
	case errors.Is(err, draft.ErrPlayerUnavailable):
		writeError(w, http.StatusConflict, "PLAYER_UNAVAILABLE", err.Error())
	case errors.Is(err, draft.ErrNotHumanTurn):
		writeError(w, http.StatusConflict, "NOT_YOUR_TURN", err.Error())
	case errors.Is(err, draft.ErrDraftComplete):
		writeError(w, http.StatusConflict, "DRAFT_COMPLETE", err.Error())
	case errors.Is(err, draft.ErrDraftNotStarted):
		writeError(w, http.StatusConflict, "DRAFT_NOT_STARTED", err.Error())
	case errors.Is(err, draft.ErrIllegalPick):
		writeError(w, http.StatusUnprocessableEntity, "ILLEGAL_PICK", err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("Failed to decode request", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return false
	}
	return true
}
