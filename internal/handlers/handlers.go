// Package handlers serves the draft over HTTP: a JSON API plus SSE and
// WebSocket event streams.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/metrics"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

// APIHandlers contains all API handler methods
type APIHandlers struct {
	svc     *service.Service
	pubsub  *pubsub.PubSub
	metrics *metrics.Registry
}

// NewAPIHandlers creates a new API handlers instance. m may be nil.
func NewAPIHandlers(svc *service.Service, ps *pubsub.PubSub, m *metrics.Registry) *APIHandlers {
	return &APIHandlers{svc: svc, pubsub: ps, metrics: m}
}

// GetDraftState returns the current draft state
func (h *APIHandlers) GetDraftState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// StartDraft moves an idle draft to running
func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Start()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// StepDraft advances automated teams. ?batch=N bounds the number of picks,
// 0 or missing runs until the human is due or the draft ends.
func (h *APIHandlers) StepDraft(w http.ResponseWriter, r *http.Request) {
	batch := 0
	if v := r.URL.Query().Get("batch"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "batch must be a non-negative integer")
			return
		}
		batch = n
	}
	res, err := h.svc.Step(batch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": res, "state": h.svc.State()})
}

// DraftPick applies the human team's pick
func (h *APIHandlers) DraftPick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "playerId is required")
		return
	}

	user := "anonymous"
	if u := auth.GetUser(r); u != nil {
		user = u.Username
	}
	logger.Info("Human pick submitted", "player_id", req.PlayerID, "user", user)

	rec, err := h.svc.Submit(req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// AutoPick drafts for whichever team is on the clock
func (h *APIHandlers) AutoPick(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.AutoPick()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Simulate runs the draft to completion
func (h *APIHandlers) Simulate(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Simulate()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResetDraft discards the live draft
func (h *APIHandlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	logger.Info("Resetting draft")
	st, err := h.svc.Reset()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetResults ranks the teams
func (h *APIHandlers) GetResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Results())
}

// GetHistory returns the pick log
func (h *APIHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.History())
}

// ListTeams returns all teams
func (h *APIHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Teams())
}

// GetTeam returns one team
func (h *APIHandlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "teamID")
	team, ok := h.svc.Team(id)
	if !ok {
		writeError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "team not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// GetRecommendations ranks the pool for a team
func (h *APIHandlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Recommendations(chi.URLParam(r, "teamID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// GetCurrentRecommendations ranks the pool for the team on the clock
func (h *APIHandlers) GetCurrentRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Recommendations("")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// GetCompliance returns a team's lineup compliance report
func (h *APIHandlers) GetCompliance(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Compliance(chi.URLParam(r, "teamID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// MoveRoster changes a rostered player's category
func (h *APIHandlers) MoveRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string                `json:"playerId"`
		Category models.RosterCategory `json:"category"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" || !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "playerId and a valid category are required")
		return
	}
	res, err := h.svc.Move(chi.URLParam(r, "teamID"), req.PlayerID, req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if !res.IsValid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// ListPlayers returns undrafted players by VORP. Supports ?position=F and ?limit=N.
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	pos := models.Position(r.URL.Query().Get("position"))
	if pos != "" && !pos.Valid() {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown position: "+string(pos))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.svc.Players(pos, limit))
}

// GetPlayer returns one player from the pool
func (h *APIHandlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playerID")
	p, ok := h.svc.Player(id)
	if !ok {
		writeError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "player not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetPlayerOutlook returns fixture and minutes projections. Supports ?gameweeks=N.
func (h *APIHandlers) GetPlayerOutlook(w http.ResponseWriter, r *http.Request) {
	gw, _ := strconv.Atoi(r.URL.Query().Get("gameweeks"))
	out, err := h.svc.Outlook(chi.URLParam(r, "playerID"), gw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLeague returns the league settings
func (h *APIHandlers) GetLeague(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.League())
}

// Me returns the signed-in user
func (h *APIHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u := auth.GetUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u, "commissioner": auth.IsCommissioner(u)})
}
