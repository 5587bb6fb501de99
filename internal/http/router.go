package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/disclosure-backend/internal/http/handlers"
	httpMW "github.com/yungbote/disclosure-backend/internal/http/middleware"
	"github.com/yungbote/disclosure-backend/internal/observability"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
	"github.com/yungbote/disclosure-backend/internal/platform/redis"
)

type RouterConfig struct {
	Log *logger.Logger

	DisclosureHandler *httpH.DisclosureHandler
	HealthHandler     *httpH.HealthHandler

	// Optional pieces; nil disables each.
	Metrics     *observability.Metrics
	Idempotency redis.IdempotencyStore

	AllowedOrigins []string
	MaxUploadBytes int64
	// TracingService names the otelgin server spans; empty skips the middleware.
	TracingService string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		if cfg.DisclosureHandler != nil {
			h := cfg.DisclosureHandler
			disclosures := api.Group("/disclosures")
			disclosures.GET("", h.List)
			disclosures.GET("/export/csv", h.ExportCSV)
			disclosures.POST("/upload",
				httpMW.BodyLimit(cfg.MaxUploadBytes),
				httpMW.Idempotency(cfg.Idempotency, cfg.Log),
				h.Upload,
			)
			disclosures.GET("/:id", h.Get)
			disclosures.PATCH("/:id", h.Update)
			disclosures.DELETE("/:id", h.Delete)
			disclosures.GET("/:id/pdf", h.DownloadPDF)
		}
	}

	return r
}
