package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// DocumentAI runs the upload through a Document AI OCR processor, which also
// recovers text from scanned pages.
type DocumentAI struct {
	log *logger.Logger
	doc gcp.Document
}

func NewDocumentAI(log *logger.Logger, doc gcp.Document) *DocumentAI {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentAI{log: log.With("extractor", KindDocumentAI), doc: doc}
}

func (d *DocumentAI) Name() string { return KindDocumentAI }

func (d *DocumentAI) ExtractText(ctx context.Context, data []byte) (string, error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("missing %%PDF header")
	}
	text, err := d.doc.ProcessBytes(ctx, "application/pdf", data)
	if err != nil {
		if errors.Is(err, gcp.ErrDocumentRejected) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	d.log.Debug("document ai text extracted", "chars", len(text))
	return text, nil
}
