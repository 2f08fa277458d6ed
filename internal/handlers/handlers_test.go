package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/draft"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/metrics"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

type harness struct {
	router http.Handler
	svc    *service.Service
	ps     *pubsub.PubSub
}

func newHarness(t *testing.T, mutate func(*RouterOptions)) harness {
	t.Helper()
	l := config.DefaultLeague()
	l.Teams = 4
	l.Rounds = 5

	ps := pubsub.New()
	svc, err := service.New(service.Options{League: l, Store: dal.NewMemoryDAL(), Seed: 3, Events: ps})
	require.NoError(t, err)

	m := metrics.New()
	opts := RouterOptions{
		API:     NewAPIHandlers(svc, ps, m),
		Health:  NewHealth(),
		Metrics: m,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return harness{router: NewRouter(opts), svc: svc, ps: ps}
}

func (h harness) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error.Code
}

func TestDraftFlow(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/draft/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.DraftState
	decodeBody(t, rec, &st)
	assert.Equal(t, string(draft.StateIdle), st.Status)
	assert.Len(t, st.Teams, 4)

	rec = h.do(t, http.MethodPost, "/api/draft/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var step struct {
		Result draft.StepResult  `json:"result"`
		State  models.DraftState `json:"state"`
	}
	decodeBody(t, rec, &step)
	assert.Equal(t, draft.StepAwaitingHuman, step.Result.Kind)
	assert.Equal(t, "team-1", step.State.CurrentTeamID)

	fwd := h.svc.Players(models.PositionForward, 1)[0]
	rec = h.do(t, http.MethodPost, "/api/draft/pick", map[string]string{"playerId": fwd.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	var pick models.PickRecord
	decodeBody(t, rec, &pick)
	assert.Equal(t, fwd.ID, pick.PlayerID)
	assert.Equal(t, 1, pick.PickNumber)

	rec = h.do(t, http.MethodPost, "/api/draft/pick", map[string]string{"playerId": h.svc.Players("", 1)[0].ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_YOUR_TURN", errorCode(t, rec))

	rec = h.do(t, http.MethodPost, "/api/draft/autopick", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/draft/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.PickRecord
	decodeBody(t, rec, &history)
	assert.Len(t, history, 2)
}

func TestDraftPickValidation(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/draft/pick", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/draft/pick", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/draft/pick", map[string]string{"playerId": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DRAFT_NOT_STARTED", errorCode(t, rec))

	rec = h.do(t, http.MethodPost, "/api/draft/step?batch=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateAndResults(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/draft/simulate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res draft.Results
	decodeBody(t, rec, &res)
	assert.True(t, res.Complete)
	assert.Equal(t, 20, res.Picks)
	assert.Equal(t, 0, res.DeadPicks)

	rec = h.do(t, http.MethodGet, "/api/draft/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/draft/autopick", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DRAFT_COMPLETE", errorCode(t, rec))

	rec = h.do(t, http.MethodPost, "/api/draft/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.DraftState
	decodeBody(t, rec, &st)
	assert.Equal(t, string(draft.StateIdle), st.Status)
	assert.NotEqual(t, res.SessionID, st.SessionID)
}

func TestTeamRoutes(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/teams", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var teams []models.Team
	decodeBody(t, rec, &teams)
	assert.Len(t, teams, 4)

	rec = h.do(t, http.MethodGet, "/api/teams/team-2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/teams/team-99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/teams/team-1/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs struct {
		Recommendations []json.RawMessage `json:"recommendations"`
		Strategy        string            `json:"strategy"`
	}
	decodeBody(t, rec, &recs)
	assert.NotEmpty(t, recs.Recommendations)
	assert.NotEmpty(t, recs.Strategy)

	rec = h.do(t, http.MethodGet, "/api/teams/team-99/recommendations", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/draft/recommendations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/teams/team-1/compliance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		TeamID string `json:"teamId"`
		Score  int    `json:"score"`
	}
	decodeBody(t, rec, &report)
	assert.Equal(t, "team-1", report.TeamID)
}

func TestMoveRoster(t *testing.T) {
	h := newHarness(t, nil)
	h.do(t, http.MethodPost, "/api/draft/step", nil)
	fwd := h.svc.Players(models.PositionForward, 1)[0]
	h.do(t, http.MethodPost, "/api/draft/pick", map[string]string{"playerId": fwd.ID})

	rec := h.do(t, http.MethodPost, "/api/teams/team-1/move", map[string]string{"playerId": fwd.ID, "category": "bench"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/teams/team-1/move", map[string]string{"playerId": fwd.ID, "category": "active"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/teams/team-1/move", map[string]string{"playerId": fwd.ID, "category": "reserve"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/teams/team-99/move", map[string]string{"playerId": fwd.ID, "category": "active"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayerRoutes(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/players?position=F&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var players []models.Player
	decodeBody(t, rec, &players)
	require.Len(t, players, 3)
	for _, p := range players {
		assert.Equal(t, models.PositionForward, p.Position)
	}

	rec = h.do(t, http.MethodGet, "/api/players?position=X", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/players/"+players[0].ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/players/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/players/"+players[0].ID+"/outlook?gameweeks=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out service.PlayerOutlook
	decodeBody(t, rec, &out)
	assert.Equal(t, players[0].ID, out.Player.ID)

	rec = h.do(t, http.MethodGet, "/api/players/nobody/outlook", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeague(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/api/league", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var l struct {
		Teams   int                        `json:"teams"`
		Scoring map[string]json.RawMessage `json:"scoring"`
	}
	decodeBody(t, rec, &l)
	assert.Equal(t, 4, l.Teams)
	assert.Contains(t, l.Scoring, "goals")
}

func TestHealthProbes(t *testing.T) {
	h := newHarness(t, func(o *RouterOptions) {
		o.Health.Add("database", true, func(context.Context) error { return nil })
		o.Health.Add("clickhouse", false, func(context.Context) error { return errors.New("down") })
	})

	rec := h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string                            `json:"status"`
		Checks map[string]map[string]interface{} `json:"checks"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"]["status"])
	assert.Equal(t, "unhealthy", body.Checks["clickhouse"]["status"])

	rec = h.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessFailsOnCriticalCheck(t *testing.T) {
	h := newHarness(t, func(o *RouterOptions) {
		o.Health.Add("database", true, func(context.Context) error { return errors.New("gone") })
	})
	rec := h.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(o *RouterOptions) {
		o.RateLimitEnabled = true
		o.RateLimitRequests = 2
		o.RateLimitWindow = time.Minute
	})

	rec := h.do(t, http.MethodGet, "/api/draft/state", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/draft/state", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// probes are outside the limited group
	rec = h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func login(t *testing.T, h harness) *http.Cookie {
	t.Helper()
	rec := h.do(t, http.MethodGet, "/auth/login", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestAuthRequired(t *testing.T) {
	mock := auth.NewMockAuth()
	h := newHarness(t, func(o *RouterOptions) { o.Auth = mock })

	rec := h.do(t, http.MethodGet, "/api/draft/state", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := login(t, h)
	rec = h.do(t, http.MethodGet, "/api/draft/state", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User         auth.User `json:"user"`
		Commissioner bool      `json:"commissioner"`
	}
	decodeBody(t, rec, &me)
	assert.Equal(t, "dev-manager", me.User.ID)
	assert.True(t, me.Commissioner)

	rec = h.do(t, http.MethodPost, "/api/draft/reset", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetRequiresCommissioner(t *testing.T) {
	mock := auth.NewMockAuth()
	mock.User.Groups = []string{"managers"}
	h := newHarness(t, func(o *RouterOptions) { o.Auth = mock })
	cookie := login(t, h)

	rec := h.do(t, http.MethodPost, "/api/draft/reset", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/draft/simulate", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/draft/step", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	h.do(t, http.MethodGet, "/api/teams", nil)

	rec := h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fantasy_draft_http_requests_total{method="GET",route="/api/teams",status="200"} 1`)
}

func TestEventsSSE(t *testing.T) {
	h := newHarness(t, nil)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: {\"type\":\"connected\"}\n", line)

	_, err = h.svc.Start()
	require.NoError(t, err)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			break
		}
	}
	assert.Equal(t, "event: "+draft.EventStart+"\n", line)
}

func TestEventsWebSocket(t *testing.T) {
	h := newHarness(t, nil)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev pubsub.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "connected", ev.Type)

	_, err = h.svc.Step(1)
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, draft.EventStart, ev.Type)
	assert.Equal(t, h.svc.SessionID(), ev.SessionID())
}
