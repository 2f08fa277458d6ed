package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/clickhouse"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	grpcserver "github.com/Billy-Davies-2/fantasy-draft-engine/internal/grpc"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/handlers"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/mcptools"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/metrics"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/mocks"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the draft service",
	Long: `Run the HTTP, WebSocket, MCP and gRPC draft service. Settings come from
the environment (and a .env file when present); the league comes from
LEAGUE_FILE.`,
	RunE: runServe,
}

type natsUpstream interface {
	pubsub.Upstream
	Close()
}

func openStore(cfg *config.Config) (dal.DraftDAL, error) {
	switch cfg.DBDriver {
	case "sqlite":
		store, err := dal.NewSQLiteDAL(cfg.SQLiteFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
		return store, nil
	case "postgres":
		store, err := dal.NewPostgresDAL(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		logger.Info("Connected to Postgres database")
		return store, nil
	default:
		logger.Info("Using in-memory data store")
		return dal.NewMemoryDAL(), nil
	}
}

// openEvents uses embedded NATS in development and a real JetStream server
// everywhere else
func openEvents(cfg *config.Config) (natsUpstream, error) {
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedded NATS: %w", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded, nil
	}
	n, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NATS: %w", err)
	}
	return n, nil
}

func openAnalytics(cfg *config.Config) (clickhouse.Analytics, error) {
	if cfg.IsDevelopment() {
		logger.Info("Using mock ClickHouse for local development (no ClickHouse server required)")
		return mocks.NewMockClickHouseClient(), nil
	}
	client, err := clickhouse.NewClient(clickhouse.Options{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDB,
		Username: cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to ClickHouse", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
	return client, nil
}

func openAuth(cfg *config.Config) auth.AuthProvider {
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development")
		return auth.NewMockAuth()
	}
	logger.Info("Using OIDC authentication", "url", cfg.OIDCBaseURL)
	return auth.NewOIDCAuth(auth.OIDCConfig{
		BaseURL:      cfg.OIDCBaseURL,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	league, err := config.LoadLeague(cfg.LeagueFile)
	if err != nil {
		return err
	}
	logger.Info("Starting fantasy draft service", "environment", cfg.Environment, "league", league.Name,
		"teams", league.Teams, "rounds", league.Rounds)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.PlayersFile != "" {
		n, err := dal.LoadPlayersIntoDatabase(store, cfg.PlayersFile)
		if err != nil {
			return err
		}
		logger.Info("Loaded player pool", "file", cfg.PlayersFile, "players", n)
	}
	var fixtureRows []models.Fixture
	if cfg.FixturesFile != "" {
		if fixtureRows, err = dal.LoadFixturesFile(cfg.FixturesFile); err != nil {
			return err
		}
		logger.Info("Loaded fixtures", "file", cfg.FixturesFile, "fixtures", len(fixtureRows))
	}

	upstream, err := openEvents(cfg)
	if err != nil {
		return err
	}
	defer upstream.Close()
	ps := pubsub.NewWithUpstream(upstream)

	analytics, err := openAnalytics(cfg)
	if err != nil {
		return err
	}
	defer analytics.Close()

	reg := metrics.New()
	svc, err := service.New(service.Options{
		League:    league,
		Store:     store,
		Fixtures:  fixtureRows,
		Seed:      cfg.DraftSeed,
		Events:    ps,
		Analytics: analytics,
		Metrics:   reg,
		Restore:   true,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go svc.RunADPRefresh(ctx, cfg.ADPRefresh)

	health := handlers.NewHealth().
		Add("database", true, func(ctx context.Context) error {
			_, err := store.LatestSession()
			return err
		}).
		Add("clickhouse", false, analytics.Ping)

	lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	grpcServer := grpc.NewServer()
	grpcserver.RegisterDraftServiceServer(grpcServer, grpcserver.NewServer(svc, ps))
	go func() {
		logger.Info("gRPC server starting", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	router := handlers.NewRouter(handlers.RouterOptions{
		API:               handlers.NewAPIHandlers(svc, ps, reg),
		Health:            health,
		Auth:              openAuth(cfg),
		Metrics:           reg,
		MCP:               mcptools.NewServer(svc).Handler(),
		CORSAllowOrigins:  cfg.CORSAllowOrigins,
		RateLimitEnabled:  cfg.RateLimitEnabled,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		logger.Error("Server failed", "error", err)
		grpcServer.Stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	grpcServer.GracefulStop()
	svc.Wait()
	return nil
}
