package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/disclosure-backend/internal/platform/envutil"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

const (
	DefaultIdempotencyTTL = 24 * time.Hour
	keyPrefix             = "idf:idempotency:"
)

// IdempotencyRecord is what is stored under an Idempotency-Key. Status 0
// means the first request is still running.
type IdempotencyRecord struct {
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

func (r IdempotencyRecord) Pending() bool { return r.Status == 0 }

type IdempotencyStore interface {
	// Reserve claims key for requestHash. When the key already exists it
	// returns the stored record and reserved=false.
	Reserve(ctx context.Context, key, requestHash string) (rec IdempotencyRecord, reserved bool, err error)
	Complete(ctx context.Context, key string, rec IdempotencyRecord) error
	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
		TTL:      envutil.Seconds("IDEMPOTENCY_TTL_SECONDS", DefaultIdempotencyTTL),
	}
}

type idempotencyStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewIdempotencyStore(log *logger.Logger, cfg Config) (IdempotencyStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &idempotencyStore{
		log: log.With("service", "RedisIdempotencyStore"),
		rdb: rdb,
		ttl: cfg.TTL,
	}, nil
}

func (s *idempotencyStore) Reserve(ctx context.Context, key, requestHash string) (IdempotencyRecord, bool, error) {
	pending := IdempotencyRecord{RequestHash: requestHash}
	raw, err := json.Marshal(pending)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	ok, err := s.rdb.SetNX(ctx, keyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		return IdempotencyRecord{}, false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return pending, true, nil
	}

	existing, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		// Expired between SETNX and GET; try once more.
		ok, err = s.rdb.SetNX(ctx, keyPrefix+key, raw, s.ttl).Result()
		if err != nil {
			return IdempotencyRecord{}, false, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return pending, true, nil
		}
		existing, err = s.rdb.Get(ctx, keyPrefix+key).Bytes()
	}
	if err != nil {
		return IdempotencyRecord{}, false, fmt.Errorf("redis get: %w", err)
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(existing, &rec); err != nil {
		return IdempotencyRecord{}, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	return rec, false, nil
}

func (s *idempotencyStore) Complete(ctx context.Context, key string, rec IdempotencyRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *idempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *idempotencyStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
