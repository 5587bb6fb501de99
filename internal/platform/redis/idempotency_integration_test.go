package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

func TestIdempotencyStoreIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	store, err := NewIdempotencyStore(logger.Nop(), Config{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewIdempotencyStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	key := uuid.NewString()

	rec, reserved, err := store.Reserve(ctx, key, "hash-a")
	if err != nil || !reserved || !rec.Pending() {
		t.Fatalf("first Reserve: rec=%+v reserved=%v err=%v", rec, reserved, err)
	}
	rec, reserved, err = store.Reserve(ctx, key, "hash-a")
	if err != nil || reserved || !rec.Pending() || rec.RequestHash != "hash-a" {
		t.Fatalf("second Reserve: rec=%+v reserved=%v err=%v", rec, reserved, err)
	}

	done := IdempotencyRecord{RequestHash: "hash-a", Status: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
	if err := store.Complete(ctx, key, done); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	rec, _, err = store.Reserve(ctx, key, "hash-a")
	if err != nil || rec.Status != 200 || string(rec.Body) != `{"ok":true}` {
		t.Fatalf("replay record: rec=%+v err=%v", rec, err)
	}

	if err := store.Release(ctx, key); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, reserved, _ := store.Reserve(ctx, key, "hash-b"); !reserved {
		t.Fatalf("Reserve after Release should succeed")
	}
	_ = store.Release(ctx, key)
}

func TestNewIdempotencyStoreRequiresAddr(t *testing.T) {
	if _, err := NewIdempotencyStore(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected error without address")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	cfg := ConfigFromEnv()
	if cfg.Addr != "localhost:6379" || cfg.TTL != time.Minute {
		t.Fatalf("ConfigFromEnv: got=%+v", cfg)
	}
}
