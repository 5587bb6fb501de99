package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/ingestion/extractor"
	"github.com/yungbote/disclosure-backend/internal/observability"
	"github.com/yungbote/disclosure-backend/internal/platform/ctxutil"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

const (
	DefaultMinTextChars = 50
	DefaultMaxTextChars = 50000

	truncationMarker = "\n\n[Document truncated...]"
)

// StructuredExtractor is the language-model call. It receives the rendered
// prompt and returns the raw model text.
type StructuredExtractor interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	Model() string
}

type Config struct {
	MinTextChars int
	MaxTextChars int
}

// Pipeline turns an uploaded PDF into a validated ExtractionResult. It never
// touches the database; a failed Extract leaves no trace beyond logs.
type Pipeline struct {
	log    *logger.Logger
	text   extractor.TextExtractor
	llm    StructuredExtractor
	prompt Prompt
	cfg    Config
}

func New(log *logger.Logger, text extractor.TextExtractor, llm StructuredExtractor, prompt Prompt, cfg Config) (*Pipeline, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if text == nil {
		return nil, errors.New("text extractor required")
	}
	if llm == nil {
		return nil, errors.New("structured extractor required")
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = DefaultMinTextChars
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = DefaultMaxTextChars
	}
	return &Pipeline{
		log:    log.With("service", "ExtractionPipeline"),
		text:   text,
		llm:    llm,
		prompt: prompt,
		cfg:    cfg,
	}, nil
}

// ValidateFilename accepts names ending in .pdf, case-insensitively.
func ValidateFilename(filename string) error {
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".pdf") {
		return fmt.Errorf("%w: only PDF files are accepted", types.ErrInvalidInput)
	}
	return nil
}

func (p *Pipeline) Extract(ctx context.Context, data []byte, filename string) (*types.ExtractionResult, error) {
	if err := ValidateFilename(filename); err != nil {
		p.fail("invalid_input")
		return nil, err
	}
	log := p.log.With(ctxutil.LogFields(ctx)...)
	start := time.Now()

	text, err := p.text.ExtractText(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, extractor.ErrUnavailable) {
			p.fail("collaborator_failure")
			log.Error("text extractor unavailable", "extractor", p.text.Name(), "error", err)
			return nil, fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
		}
		p.fail("unreadable_document")
		log.Warn("text extraction failed", "extractor", p.text.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", types.ErrUnreadableDocument, err)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < p.cfg.MinTextChars {
		p.fail("insufficient_content")
		return nil, types.ErrInsufficientContent
	}

	text, truncated := truncate(text, p.cfg.MaxTextChars)
	textChars := utf8.RuneCountInString(text)

	raw, err := p.llm.GenerateText(ctx, p.prompt.System, p.prompt.Render(text))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.fail("collaborator_failure")
		log.Error("structured extraction failed", "model", p.llm.Model(), "error", err)
		return nil, fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
	}

	fields, err := decodeFields(raw)
	if err != nil {
		p.fail("malformed_extraction")
		log.Warn("structured extraction returned invalid json", "model", p.llm.Model(), "error", err)
		return nil, err
	}
	res, err := normalize(fields)
	if err != nil {
		p.fail("incomplete_extraction")
		log.Warn("structured extraction incomplete", "model", p.llm.Model(), "error", err)
		return nil, err
	}
	res.Model = p.llm.Model()
	res.TextChars = textChars
	res.Truncated = truncated

	observability.Current().IncExtraction("ok")
	log.Info("document extracted",
		"extractor", p.text.Name(),
		"model", res.Model,
		"text_chars", textChars,
		"truncated", truncated,
		"inventors", len(res.Inventors),
		"duration", time.Since(start).String(),
	)
	return res, nil
}

func (p *Pipeline) fail(kind string) {
	observability.Current().IncExtraction(kind)
}

// truncate keeps the first max runes and appends the truncation marker.
func truncate(text string, max int) (string, bool) {
	if utf8.RuneCountInString(text) <= max {
		return text, false
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i] + truncationMarker, true
		}
		n++
	}
	return text, false
}
