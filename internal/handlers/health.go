package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Check reports whether one dependency is usable
type Check func(ctx context.Context) error

// Health serves the health, liveness and readiness probes. Critical checks
// gate readiness; the others only degrade /api/health.
type Health struct {
	checks   map[string]Check
	critical map[string]bool
	timeout  time.Duration
}

// NewHealth creates an empty set of checks
func NewHealth() *Health {
	return &Health{checks: map[string]Check{}, critical: map[string]bool{}, timeout: 3 * time.Second}
}

// Add registers a check
func (h *Health) Add(name string, critical bool, check Check) *Health {
	h.checks[name] = check
	h.critical[name] = critical
	return h
}

func (h *Health) run(ctx context.Context, onlyCritical bool) (map[string]interface{}, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]interface{}, len(names))
	healthy := true
	for _, name := range names {
		if onlyCritical && !h.critical[name] {
			continue
		}
		if err := h.checks[name](ctx); err != nil {
			healthy = false
			checks[name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			continue
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}
	return checks, healthy
}

// HealthHandler reports every dependency
func (h *Health) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.run(r.Context(), false)
	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// LivenessHandler handles Kubernetes liveness probes and checks nothing
func (h *Health) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// ReadinessHandler handles Kubernetes readiness probes using critical checks
func (h *Health) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.run(r.Context(), true)
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "not_ready",
			"checks":    checks,
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
