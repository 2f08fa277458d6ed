package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestObservePick(t *testing.T) {
	r := New()
	r.ObservePick(models.PickRecord{Automated: true})
	r.ObservePick(models.PickRecord{Automated: true})
	r.ObservePick(models.PickRecord{})
	r.ObservePick(models.PickRecord{Skipped: true, Automated: true})

	out := scrape(t, r)
	for _, want := range []string{
		`fantasy_draft_draft_picks_total{kind="automated"} 2`,
		`fantasy_draft_draft_picks_total{kind="human"} 1`,
		`fantasy_draft_draft_picks_total{kind="skipped"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestObserveStep(t *testing.T) {
	r := New()
	r.ObserveStep("advanced", 2*time.Millisecond)
	out := scrape(t, r)
	if !strings.Contains(out, `fantasy_draft_draft_step_duration_seconds_count{result="advanced"} 1`) {
		t.Error("step histogram not recorded")
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := New()
	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/api/teams/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/"+id, nil))
	}

	out := scrape(t, r)
	want := `fantasy_draft_http_requests_total{method="GET",route="/api/teams/{id}",status="418"} 3`
	if !strings.Contains(out, want) {
		t.Errorf("missing %q in\n%s", want, out)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.DraftsCompleted.Inc()
	if strings.Contains(scrape(t, b), "fantasy_draft_draft_completed_total 1") {
		t.Error("registries share state")
	}
}
