package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/valkey-io/valkey-go"

	"sentiment-dashboard/internal/analysis"
	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/dashboard"
	"sentiment-dashboard/internal/home"
	"sentiment-dashboard/internal/notify"
	"sentiment-dashboard/internal/results"
	"sentiment-dashboard/internal/shared/config"
	"sentiment-dashboard/internal/shared/server"
	"sentiment-dashboard/internal/shared/storage/db"
	"sentiment-dashboard/internal/shared/storage/kv"
	localstore "sentiment-dashboard/internal/shared/storage/object/local"
	s3store "sentiment-dashboard/internal/shared/storage/object/s3"
	"sentiment-dashboard/internal/shared/telemetry"
	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/upload"
	"sentiment-dashboard/internal/validation"
)

// App holds shared dependencies.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	Store        *state.Store
	Backend      *backend.Client
	Feed         *notify.Feed
	Orchestrator *analysis.Orchestrator

	DB     *sql.DB
	Valkey valkey.Client
}

// Build wires the state store, the inference client, the orchestrator and
// every view into a router. A persisted unfinished task resumes polling.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.StateBackend) == "" {
		cfg.StateBackend = config.StateBackendMemory
	}

	app := &App{Config: cfg}

	persister, err := app.buildPersister(ctx)
	if err != nil {
		app.closeConnections()
		return nil, err
	}
	store, err := state.Open(ctx, persister)
	if err != nil {
		app.closeConnections()
		return nil, err
	}
	app.Store = store

	client, err := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	if err != nil {
		app.closeConnections()
		return nil, err
	}
	app.Backend = client
	app.Feed = notify.NewFeed(0)
	app.Orchestrator = analysis.New(client, store, app.Feed, analysis.Options{
		PollInterval:           cfg.PollInterval,
		RetryDelay:             cfg.PollRetryDelay,
		MaxConsecutiveFailures: cfg.PollMaxFailures,
		MaxDuration:            cfg.PollMaxDuration,
	})

	homeHandler := home.NewHandler(store)
	uploadHandler := upload.NewHandler(app.Orchestrator, store, app.Feed, cfg.MaxUploadBytes)
	resultsHandler := results.NewHandler(store, client)
	dashboardHandler := dashboard.NewHandler(store)
	validationHandler := validation.NewHandler(client, app.Feed, cfg.MaxUploadBytes)
	notifyHandler := notify.NewHandler(app.Feed)

	router, err := server.NewRouter(server.RouterDeps{
		Config: cfg,
		Pages:  []server.PageHandler{homeHandler, uploadHandler, resultsHandler, dashboardHandler, validationHandler},
		APIs:   []server.APIHandler{uploadHandler, resultsHandler, dashboardHandler, validationHandler, notifyHandler},
	})
	if err != nil {
		app.closeConnections()
		return nil, err
	}
	app.Router = router

	if err := app.Orchestrator.Resume(); err != nil && !errors.Is(err, analysis.ErrNoTask) {
		telemetry.Warn("bootstrap.resume_failed", map[string]any{"error": err.Error()})
	}
	return app, nil
}

// Close stops polling and releases storage connections.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.Orchestrator != nil {
		err = a.Orchestrator.Shutdown(ctx)
	}
	a.closeConnections()
	return err
}

func (a *App) closeConnections() {
	if a.Valkey != nil {
		a.Valkey.Close()
		a.Valkey = nil
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			telemetry.Warn("bootstrap.db_close_failed", map[string]any{"error": err.Error()})
		}
		a.DB = nil
	}
}

func (a *App) buildPersister(ctx context.Context) (state.Persister, error) {
	cfg := a.Config
	switch cfg.StateBackend {
	case config.StateBackendMemory:
		return state.NewMemoryPersister(), nil
	case config.StateBackendFile:
		return state.NewObjectPersister(localstore.New(cfg.StateDir)), nil
	case config.StateBackendS3:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("STATE_BACKEND=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return state.NewObjectPersister(store), nil
	case config.StateBackendPostgres:
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if sqlDB == nil {
			return state.NewMemoryPersister(), nil
		}
		a.DB = sqlDB
		return state.NewPGPersister(sqlDB), nil
	case config.StateBackendValkey:
		client, err := kv.Connect(ctx, kv.Options{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPass,
			TLS:      cfg.ValkeyTLS,
		})
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.valkey_unavailable", map[string]any{"error": err.Error()})
				return state.NewMemoryPersister(), nil
			}
			return nil, err
		}
		a.Valkey = client
		return state.NewValkeyPersister(client), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_url_empty", map[string]any{"fallback": config.StateBackendMemory})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{
				"fallback": config.StateBackendMemory,
				"error":    err.Error(),
			})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
