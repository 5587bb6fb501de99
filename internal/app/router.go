package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/disclosure-backend/internal/http"
	"github.com/yungbote/disclosure-backend/internal/observability"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, clients Clients, metrics *observability.Metrics, tracingService string) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		DisclosureHandler: handlers.Disclosure,
		HealthHandler:     handlers.Health,
		Metrics:           metrics,
		Idempotency:       clients.Idempotency,
		AllowedOrigins:    cfg.AllowedOrigins,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		TracingService:    tracingService,
	})
}
