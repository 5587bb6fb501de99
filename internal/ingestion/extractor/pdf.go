package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// PDF extracts the embedded text layer page by page. Pages with no text are
// skipped; the rest are joined with a blank line.
type PDF struct {
	log *logger.Logger
}

func NewPDF(log *logger.Logger) *PDF {
	if log == nil {
		log = logger.Nop()
	}
	return &PDF{log: log.With("extractor", KindPDF)}
}

func (p *PDF) Name() string { return KindPDF }

func (p *PDF) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if !IsPDF(data) {
		return "", fmt.Errorf("missing %%PDF header")
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	parts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			p.log.Warn("pdf page text failed", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(pt) != "" {
			parts = append(parts, pt)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
