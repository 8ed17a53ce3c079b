package main

// Apply the app_state migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"sentiment-dashboard/internal/shared/config"
	"sentiment-dashboard/internal/shared/storage/db"
	"sentiment-dashboard/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", nil)
}
