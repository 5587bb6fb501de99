package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/ingestion/extractor"
	"github.com/yungbote/disclosure-backend/internal/ingestion/pipeline"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
	"github.com/yungbote/disclosure-backend/internal/services"
)

type Services struct {
	Pipeline    *pipeline.Pipeline
	Attachments services.AttachmentManager
	Disclosures services.DisclosureService
	Uploads     services.UploadService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	text, err := extractor.New(cfg.TextExtractor, log, clients.GcpDocument)
	if err != nil {
		return Services{}, fmt.Errorf("init text extractor: %w", err)
	}
	prompt, err := pipeline.LoadPrompt()
	if err != nil {
		return Services{}, fmt.Errorf("load extraction prompt: %w", err)
	}
	pipe, err := pipeline.New(log, text, clients.LLM, prompt, cfg.Extraction)
	if err != nil {
		return Services{}, fmt.Errorf("init extraction pipeline: %w", err)
	}

	attachments := services.NewAttachmentManager(log, clients.GcpBucket)
	disclosures := services.NewDisclosureService(
		db,
		log,
		reposet.Dockets,
		reposet.Disclosures,
		reposet.Inventors,
		reposet.StatusHistory,
		attachments,
	)
	uploads := services.NewUploadService(log, pipe, disclosures, attachments)

	log.Info("Extraction pipeline ready", "text_extractor", text.Name(), "model", clients.LLM.Model(), "prompt", prompt.Name)
	return Services{
		Pipeline:    pipe,
		Attachments: attachments,
		Disclosures: disclosures,
		Uploads:     uploads,
	}, nil
}
