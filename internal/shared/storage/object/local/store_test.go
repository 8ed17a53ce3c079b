package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"sentiment-dashboard/internal/shared/storage/object"
)

func TestPutThenOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.Put(ctx, "state/sentiment-store.json", "application/json", strings.NewReader(`{"taskId":"t1"}`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 15 {
		t.Fatalf("expected 15 bytes written, got %d", n)
	}

	rc, err := store.Open(ctx, "state/sentiment-store.json")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"taskId":"t1"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestPutOverwrites(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Put(ctx, "k.json", "application/json", strings.NewReader("first-value")); err != nil {
		t.Fatalf("Put first: %v", err)
	}
	if _, err := store.Put(ctx, "k.json", "application/json", strings.NewReader("2")); err != nil {
		t.Fatalf("Put second: %v", err)
	}
	rc, err := store.Open(ctx, "k.json")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "2" {
		t.Fatalf("expected overwritten body, got %q", body)
	}
}

func TestOpenMissingReturnsNotFound(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "missing.json"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"../escape.json", "/abs.json", ""} {
		if _, err := store.Put(ctx, key, "", strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
