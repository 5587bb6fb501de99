package app

import (
	"strings"
	"time"

	"github.com/yungbote/disclosure-backend/internal/data/db"
	"github.com/yungbote/disclosure-backend/internal/http/middleware"
	"github.com/yungbote/disclosure-backend/internal/ingestion/extractor"
	"github.com/yungbote/disclosure-backend/internal/ingestion/pipeline"
	"github.com/yungbote/disclosure-backend/internal/platform/envutil"
	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
	"github.com/yungbote/disclosure-backend/internal/platform/openai"
	"github.com/yungbote/disclosure-backend/internal/platform/redis"
)

const defaultMaxUploadMB = 25

type Config struct {
	Port        string
	Environment string
	Version     string
	ServiceName string
	OtelEnabled bool

	Database db.Config

	ObjectStorageMode   string
	StorageEmulatorHost string
	BucketName          string
	GCPProjectID        string
	BucketLocation      string

	TextExtractor string
	DocumentAI    gcp.DocumentConfig
	OpenAI        openai.Config
	Extraction    pipeline.Config

	Redis redis.Config

	AllowedOrigins []string
	MaxUploadBytes int64

	MetricsInterval time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8000"),
		Environment: envutil.String("APP_ENV", envutil.String("LOG_MODE", "development")),
		Version:     envutil.String("APP_VERSION", "1.0.0"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "disclosure-backend"),
		OtelEnabled: envutil.Bool("OTEL_ENABLED", false),

		Database: db.Config{
			Driver:        envutil.String("DATABASE_DRIVER", db.DriverPostgres),
			DSN:           envutil.String("DATABASE_URL", ""),
			Host:          envutil.String("POSTGRES_HOST", "localhost"),
			Port:          envutil.String("POSTGRES_PORT", "5432"),
			User:          envutil.String("POSTGRES_USER", "postgres"),
			Password:      envutil.String("POSTGRES_PASSWORD", ""),
			Name:          envutil.String("POSTGRES_NAME", "disclosures"),
			SSLMode:       envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:    envutil.String("SQLITE_PATH", "disclosures.db"),
			MaxOpenConns:  envutil.Int("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:  envutil.Int("DATABASE_MAX_IDLE_CONNS", 5),
			SlowThreshold: envutil.Seconds("DATABASE_SLOW_THRESHOLD_SECONDS", time.Second),
		},

		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		BucketName:          envutil.String("DISCLOSURE_GCS_BUCKET_NAME", gcp.DefaultBucketName),
		GCPProjectID:        envutil.String("GCP_PROJECT_ID", ""),
		BucketLocation:      envutil.String("GCS_BUCKET_LOCATION", "US"),

		TextExtractor: strings.ToLower(envutil.String("TEXT_EXTRACTOR", extractor.KindPDF)),
		DocumentAI:    gcp.DocumentConfigFromEnv(),
		OpenAI:        openai.ConfigFromEnv(),
		Extraction: pipeline.Config{
			MinTextChars: envutil.Int("EXTRACTION_MIN_TEXT_CHARS", pipeline.DefaultMinTextChars),
			MaxTextChars: envutil.Int("EXTRACTION_MAX_TEXT_CHARS", pipeline.DefaultMaxTextChars),
		},

		Redis: redis.ConfigFromEnv(),

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", middleware.DefaultAllowedOrigins),
		MaxUploadBytes: int64(envutil.Int("MAX_UPLOAD_MB", defaultMaxUploadMB)) << 20,

		MetricsInterval: envutil.Seconds("METRICS_DB_INTERVAL_SECONDS", 15*time.Second),
	}

	if log != nil {
		log.Info("Config loaded",
			"port", cfg.Port,
			"db_driver", cfg.Database.Driver,
			"object_storage_mode", cfg.ObjectStorageMode,
			"bucket", cfg.BucketName,
			"text_extractor", cfg.TextExtractor,
			"openai_model", cfg.OpenAI.Model,
			"openai_configured", cfg.OpenAI.APIKey != "",
			"idempotency_enabled", cfg.Redis.Addr != "",
			"max_upload_bytes", cfg.MaxUploadBytes,
		)
	}
	return cfg
}
