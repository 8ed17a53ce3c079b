package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected nil database to be a no-op, got %v", err)
	}
}

func TestEmbeddedMigrationsCreateAppState(t *testing.T) {
	names, err := fs.Glob(migrationFiles, migrationsDir+"/*.sql")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	body, err := fs.ReadFile(migrationFiles, names[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(body)
	if !strings.Contains(text, "-- +goose Up") || !strings.Contains(text, "app_state") {
		t.Fatalf("unexpected first migration %s", names[0])
	}
}
