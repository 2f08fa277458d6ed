package fuzz

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/handlers"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

func init() {
	// Initialize logger for tests
	logger.Init()
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	l := config.DefaultLeague()
	l.Teams = 4
	l.Rounds = 3
	ps := pubsub.New()
	svc, err := service.New(service.Options{League: l, Store: dal.NewMemoryDAL(), Events: ps})
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	return handlers.NewRouter(handlers.RouterOptions{API: handlers.NewAPIHandlers(svc, ps, nil)})
}

func serve(router http.Handler, method, target, body string) int {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

// FuzzHTTPDraftPick fuzzes the HTTP draft pick endpoint
func FuzzHTTPDraftPick(f *testing.F) {
	// Seed corpus with valid examples
	f.Add(`{"playerId":"ars-f1"}`)
	f.Add(`{"playerId":"mci-g2"}`)
	f.Add(`{"playerId":""}`)
	f.Add(`{"playerId":42}`)

	f.Fuzz(func(t *testing.T, data string) {
		router := newRouter(t)
		serve(router, http.MethodPost, "/api/draft/step", "")

		// Should not panic, and never a 5xx for bad input
		if code := serve(router, http.MethodPost, "/api/draft/pick", data); code >= 500 {
			t.Errorf("status %d for %q", code, data)
		}
	})
}

// FuzzHTTPMoveRoster fuzzes the roster move endpoint
func FuzzHTTPMoveRoster(f *testing.F) {
	f.Add("team-1", `{"playerId":"ars-f1","category":"reserve"}`)
	f.Add("team-99", `{"playerId":"","category":"active"}`)
	f.Add("", `{"category":"injured_reserve"}`)

	f.Fuzz(func(t *testing.T, teamID, data string) {
		router := newRouter(t)
		target := "/api/teams/" + url.PathEscape(teamID) + "/move"
		if code := serve(router, http.MethodPost, target, data); code >= 500 {
			t.Errorf("status %d for team %q body %q", code, teamID, data)
		}
	})
}

// FuzzHTTPQueryParams fuzzes the query-driven read endpoints
func FuzzHTTPQueryParams(f *testing.F) {
	f.Add("F", "3", "5", "2")
	f.Add("X", "-1", "abc", "-4")
	f.Add("", "", "", "")

	f.Fuzz(func(t *testing.T, position, limit, gameweeks, batch string) {
		router := newRouter(t)
		q := url.Values{"position": {position}, "limit": {limit}}
		if code := serve(router, http.MethodGet, "/api/players?"+q.Encode(), ""); code >= 500 {
			t.Errorf("players status %d", code)
		}
		q = url.Values{"gameweeks": {gameweeks}}
		if code := serve(router, http.MethodGet, "/api/players/ars-f1/outlook?"+q.Encode(), ""); code >= 500 {
			t.Errorf("outlook status %d", code)
		}
		q = url.Values{"batch": {batch}}
		if code := serve(router, http.MethodPost, "/api/draft/step?"+q.Encode(), ""); code >= 500 {
			t.Errorf("step status %d", code)
		}
	})
}

// FuzzLeagueYAML fuzzes league settings parsing
func FuzzLeagueYAML(f *testing.F) {
	f.Add("teams: 8\nrounds: 12\n")
	f.Add("scoring:\n  goals: {F: 4, M: 5, D: 6, G: 6}\n")
	f.Add("positionLimits:\n  F: {minActive: 1, maxActive: 3, totalMax: 4}\n")
	f.Add("scoring: [1, 2]\n")

	f.Fuzz(func(t *testing.T, data string) {
		l, err := config.ParseLeague([]byte(data))
		if err != nil {
			return
		}
		if err := l.Validate(); err != nil {
			t.Errorf("parsed league fails validation: %v", err)
		}
		if len(l.BuildTeams()) != l.Teams {
			t.Errorf("team count mismatch")
		}
	})
}
