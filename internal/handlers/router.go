package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/metrics"
)

// RouterOptions wires the HTTP surface
type RouterOptions struct {
	API     *APIHandlers
	Health  *Health
	Auth    auth.AuthProvider // nil serves the API without sign-in
	Metrics *metrics.Registry
	MCP     http.Handler // mounted at /mcp when set

	CORSAllowOrigins  []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter creates the chi router with all middleware and routes
func NewRouter(opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	c := corslib.New(corslib.Options{
		AllowedOrigins:   opts.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Retry-After", "Mcp-Session-Id"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	if opts.Health != nil {
		r.Get("/api/health", opts.Health.HealthHandler)
		r.Get("/healthz", opts.Health.LivenessHandler)
		r.Get("/readyz", opts.Health.ReadinessHandler)
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	if opts.Auth != nil {
		r.Get("/auth/login", opts.Auth.LoginHandler)
		r.Get("/auth/callback", opts.Auth.CallbackHandler)
		r.Get("/auth/logout", opts.Auth.LogoutHandler)
	}

	h := opts.API
	r.Group(func(r chi.Router) {
		if opts.RateLimitEnabled {
			r.Use(RateLimitMiddleware(opts.RateLimitRequests, opts.RateLimitWindow))
		}
		if opts.Auth != nil {
			r.Use(opts.Auth.Middleware)
		}
		commissioner := func(fn http.HandlerFunc) http.Handler {
			if opts.Auth == nil {
				return fn
			}
			return auth.RequireCommissioner(fn)
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/me", h.Me)
			r.Get("/league", h.GetLeague)

			r.Route("/draft", func(r chi.Router) {
				r.Get("/state", h.GetDraftState)
				r.Post("/start", h.StartDraft)
				r.Post("/step", h.StepDraft)
				r.Post("/pick", h.DraftPick)
				r.Post("/autopick", h.AutoPick)
				r.Get("/recommendations", h.GetCurrentRecommendations)
				r.Get("/results", h.GetResults)
				r.Get("/history", h.GetHistory)
				r.Method(http.MethodPost, "/simulate", commissioner(h.Simulate))
				r.Method(http.MethodPost, "/reset", commissioner(h.ResetDraft))
			})

			r.Get("/teams", h.ListTeams)
			r.Route("/teams/{teamID}", func(r chi.Router) {
				r.Get("/", h.GetTeam)
				r.Get("/recommendations", h.GetRecommendations)
				r.Get("/compliance", h.GetCompliance)
				r.Post("/move", h.MoveRoster)
			})

			r.Get("/players", h.ListPlayers)
			r.Get("/players/{playerID}", h.GetPlayer)
			r.Get("/players/{playerID}/outlook", h.GetPlayerOutlook)

			r.Get("/events", h.EventsSSE)
			r.Get("/ws", h.EventsWS)
		})

		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
			r.Handle("/mcp/*", opts.MCP)
		}
	})

	return r
}
