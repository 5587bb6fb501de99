package app

import (
	httpH "github.com/yungbote/disclosure-backend/internal/http/handlers"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Disclosure *httpH.DisclosureHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Disclosure: httpH.NewDisclosureHandler(log, services.Disclosures, services.Uploads, services.Attachments),
	}
}
