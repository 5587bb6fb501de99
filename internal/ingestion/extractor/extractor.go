package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

const (
	KindPDF        = "pdf"
	KindDocumentAI = "documentai"
)

// ErrUnavailable means the extractor backend failed, not the document.
var ErrUnavailable = errors.New("text extractor unavailable")

// TextExtractor turns an uploaded document into plain text. Implementations
// return an error only when the document cannot be parsed at all; an empty
// string is a valid result for image-only documents.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
	Name() string
}

// IsPDF reports whether b starts with the PDF magic header.
func IsPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// New picks a text extractor by kind. docAI may be nil unless kind is documentai.
func New(kind string, log *logger.Logger, docAI gcp.Document) (TextExtractor, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindPDF:
		return NewPDF(log), nil
	case KindDocumentAI:
		if docAI == nil {
			return nil, fmt.Errorf("text extractor %q requires a Document AI client", KindDocumentAI)
		}
		return NewDocumentAI(log, docAI), nil
	default:
		return nil, fmt.Errorf("unknown text extractor %q", kind)
	}
}
