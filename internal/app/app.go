package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/config"
	"github.com/preetsinghmakkar/meetingsync/internal/handlers"
	"github.com/preetsinghmakkar/meetingsync/internal/middlewares"
	"github.com/preetsinghmakkar/meetingsync/internal/queue"
	"github.com/preetsinghmakkar/meetingsync/internal/repositories"
	"github.com/preetsinghmakkar/meetingsync/internal/routes"
	"github.com/preetsinghmakkar/meetingsync/internal/services"
	"github.com/preetsinghmakkar/meetingsync/internal/stream"
	ws "github.com/preetsinghmakkar/meetingsync/internal/websocket"
)

const launchBackoff = 500 * time.Millisecond

type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	DB        *sql.DB
	Router    *gin.Engine
	Lifecycle *services.LifecycleService
	Launcher  *services.AgentLauncher
}

// New opens the store and wires every component from cfg.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := repositories.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a, err := wire(db, cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func wire(db *sql.DB, cfg *config.Config, log zerolog.Logger) (*App, error) {
	meetingRepo := repositories.NewMeetingRepository(db)
	agentRepo := repositories.NewAgentRepository(db)
	jobRepo := repositories.NewJobRepository(db)

	streamClient, err := stream.NewClient(stream.Config{
		APIKey:      cfg.StreamAPIKey,
		APISecret:   cfg.StreamAPISecret,
		BaseURL:     cfg.StreamBaseURL,
		RealtimeURL: cfg.StreamRealtimeURL,
		Timeout:     cfg.UpstreamTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating stream client: %w", err)
	}
	provider := services.NewStreamProvider(streamClient, cfg.StreamCallType)

	launcher := services.NewAgentLauncher(provider, ws.NewHub(), services.LauncherConfig{
		Workers:      cfg.AgentLaunchWorkers,
		Attempts:     cfg.AgentLaunchAttempts,
		Backoff:      launchBackoff,
		Timeout:      cfg.UpstreamTimeout,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	}, log)

	var sender queue.Sender
	switch cfg.QueueDriver {
	case config.QueueDriverDatabase:
		sender = queue.NewDatabaseSender(jobRepo)
	default:
		sender = queue.NewHTTPSender(cfg.QueueEventURL, cfg.QueueEventKey, cfg.UpstreamTimeout)
	}
	dispatcher := queue.NewDispatcher(sender, cfg.PostProcessEventName, log)

	lifecycle := services.NewLifecycleService(
		meetingRepo,
		agentRepo,
		provider,
		launcher,
		dispatcher,
		cfg.UpstreamTimeout,
		log,
	)

	webhookHandler := handlers.NewWebhookHandler(lifecycle, log)
	opsHandler := handlers.NewOpsHandler(db, log)

	router := newRouter(cfg, log)
	routes.RegisterOpsEndpoints(router, opsHandler)
	routes.RegisterPublicEndpoints(router, webhookHandler, streamClient, cfg.WebhookMaxBodyBytes, log)

	return &App{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Router:    router,
		Lifecycle: lifecycle,
		Launcher:  launcher,
	}, nil
}

func newRouter(cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(log))

	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", middlewares.SignatureHeader, middlewares.APIKeyHeader, "X-Request-ID"},
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}

	return router
}

// Run serves HTTP until ctx is cancelled, then shuts down within shutdownTimeout.
func (a *App) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", srv.Addr).Str("env", a.Config.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Close(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		a.Log.Info().Msg("shutdown signal received, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.Error().Err(err).Msg("server forced to shutdown")
	}
	return a.Close(shutdownCtx)
}

// Close stops agent launches, closes live agent sessions and the database.
func (a *App) Close(ctx context.Context) error {
	launchErr := a.Launcher.Shutdown(ctx)
	if launchErr != nil {
		a.Log.Warn().Err(launchErr).Msg("agent launcher did not drain before deadline")
	}

	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	a.Log.Info().Msg("shutdown complete")
	return nil
}
