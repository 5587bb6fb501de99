package services

import (
	"context"
	"errors"

	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/platform/ctxutil"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// Extractor is the extraction pipeline as seen by the upload flow.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*types.ExtractionResult, error)
}

// UploadService runs an uploaded PDF through extraction, persistence and
// blob storage, in that order. Nothing is written unless extraction succeeds;
// a blob failure leaves the disclosure without a PDF.
type UploadService interface {
	Upload(ctx context.Context, filename string, data []byte) (*types.Disclosure, error)
}

type uploadService struct {
	log         *logger.Logger
	extractor   Extractor
	disclosures DisclosureService
	attachments AttachmentManager
}

func NewUploadService(baseLog *logger.Logger, extractor Extractor, disclosures DisclosureService, attachments AttachmentManager) UploadService {
	return &uploadService{
		log:         baseLog.With("service", "UploadService"),
		extractor:   extractor,
		disclosures: disclosures,
		attachments: attachments,
	}
}

func (s *uploadService) Upload(ctx context.Context, filename string, data []byte) (*types.Disclosure, error) {
	res, err := s.extractor.Extract(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := s.disclosures.Create(ctx, res, filename)
	if err != nil {
		return nil, err
	}

	// The disclosure is committed; the blob write must not undo it.
	attach := s.attachments.Attach(context.WithoutCancel(ctx), d.ID, filename, data)
	if attach.Outcome != OutcomeCommitted {
		return d, nil
	}
	if err := s.disclosures.SetPDFObjectKey(context.WithoutCancel(ctx), d.ID, attach.Key); err != nil {
		s.log.Warn("Failed to record PDF object key",
			append(ctxutil.LogFields(ctx), "disclosure_id", d.ID, "object_key", attach.Key, "error", err)...,
		)
		if !errors.Is(err, types.ErrNotFound) {
			s.attachments.Remove(context.WithoutCancel(ctx), attach.Key)
		}
		return d, nil
	}
	key := attach.Key
	d.PDFObjectKey = &key
	return d, nil
}
