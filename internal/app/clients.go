package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/disclosure-backend/internal/ingestion/extractor"
	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
	"github.com/yungbote/disclosure-backend/internal/platform/openai"
	"github.com/yungbote/disclosure-backend/internal/platform/redis"
)

type Clients struct {
	GcpBucket   gcp.BucketService
	GcpDocument gcp.Document
	LLM         openai.Client
	Idempotency redis.IdempotencyStore
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Gcs
	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}
	out := Clients{GcpBucket: bucket}

	// Document AI, only when selected as the text extractor
	if cfg.TextExtractor == extractor.KindDocumentAI {
		doc, err := gcp.NewDocument(log, cfg.DocumentAI)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init document client: %w", err)
		}
		out.GcpDocument = doc
	}

	// Openai
	llm, err := openai.NewClient(log, cfg.OpenAI)
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		// CRUD stays usable; uploads fail until a key is configured.
		log.Warn("OPENAI_API_KEY not set; uploads will fail", "model", cfg.OpenAI.Model)
		llm = unconfiguredLLM{model: cfg.OpenAI.Model}
	case err != nil:
		out.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out.LLM = llm

	// Redis
	if cfg.Redis.Addr != "" {
		store, err := redis.NewIdempotencyStore(log, cfg.Redis)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis idempotency store: %w", err)
		}
		out.Idempotency = store
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Idempotency != nil {
		_ = c.Idempotency.Close()
	}
	if c.GcpDocument != nil {
		_ = c.GcpDocument.Close()
	}
	if c.GcpBucket != nil {
		_ = c.GcpBucket.Close()
	}
}

type unconfiguredLLM struct {
	model string
}

func (u unconfiguredLLM) GenerateText(context.Context, string, string) (string, error) {
	return "", openai.ErrMissingAPIKey
}

func (u unconfiguredLLM) Model() string {
	if u.model == "" {
		return openai.DefaultModel
	}
	return u.model
}
