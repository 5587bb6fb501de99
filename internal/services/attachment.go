package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/observability"
	"github.com/yungbote/disclosure-backend/internal/platform/ctxutil"
	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

const pdfContentType = "application/pdf"

type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeDegraded  Outcome = "degraded"
)

type AttachResult struct {
	Key     string
	Outcome Outcome
	Err     error
}

// AttachmentManager stores original uploads next to their disclosure. Writes
// and removals never fail the caller; they report a degraded outcome instead.
type AttachmentManager interface {
	Attach(ctx context.Context, disclosureID uuid.UUID, filename string, data []byte) AttachResult
	Fetch(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) Outcome
}

type attachmentManager struct {
	log    *logger.Logger
	bucket gcp.BucketService
}

func NewAttachmentManager(baseLog *logger.Logger, bucket gcp.BucketService) AttachmentManager {
	return &attachmentManager{
		log:    baseLog.With("service", "AttachmentManager"),
		bucket: bucket,
	}
}

// ObjectKey is disclosures/{id}/{filename}; any directory part of filename is dropped.
func ObjectKey(disclosureID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "disclosure.pdf"
	}
	return fmt.Sprintf("disclosures/%s/%s", disclosureID, name)
}

func (m *attachmentManager) Attach(ctx context.Context, disclosureID uuid.UUID, filename string, data []byte) AttachResult {
	key := ObjectKey(disclosureID, filename)
	log := m.log.With(ctxutil.LogFields(ctx)...)

	err := m.bucket.EnsureBucket(ctx)
	if err == nil {
		err = m.bucket.UploadFile(ctx, key, pdfContentType, bytes.NewReader(data))
	}
	if err != nil {
		observability.Current().IncBlobOperation("attach", string(OutcomeDegraded))
		log.Warn("Failed to upload PDF to storage",
			"disclosure_id", disclosureID,
			"object_key", key,
			"bucket", m.bucket.BucketName(),
			"error", err,
		)
		return AttachResult{Key: key, Outcome: OutcomeDegraded, Err: err}
	}

	observability.Current().IncBlobOperation("attach", string(OutcomeCommitted))
	log.Info("PDF stored", "disclosure_id", disclosureID, "object_key", key, "bytes", len(data))
	return AttachResult{Key: key, Outcome: OutcomeCommitted}
}

// Fetch returns types.ErrBlobNotFound for a missing key.
func (m *attachmentManager) Fetch(ctx context.Context, key string) ([]byte, error) {
	rc, err := m.bucket.DownloadFile(ctx, key)
	if err != nil {
		if errors.Is(err, gcp.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Remove deletes the blob. A failure leaves an orphaned object, which is
// logged with its key and counted.
func (m *attachmentManager) Remove(ctx context.Context, key string) Outcome {
	err := m.bucket.DeleteFile(ctx, key)
	if err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
		observability.Current().IncBlobOperation("remove", string(OutcomeDegraded))
		m.log.Warn("Failed to delete PDF from storage; object orphaned",
			append(ctxutil.LogFields(ctx),
				"object_key", key,
				"bucket", m.bucket.BucketName(),
				"error", err,
			)...,
		)
		return OutcomeDegraded
	}
	observability.Current().IncBlobOperation("remove", string(OutcomeCommitted))
	return OutcomeCommitted
}
