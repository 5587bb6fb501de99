package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/yungbote/disclosure-backend/internal/platform/envutil"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// ErrDocumentRejected marks a processor refusal of the document itself, as
// opposed to an outage or quota error.
var ErrDocumentRejected = errors.New("document rejected by processor")

type Document interface {
	// ProcessBytes runs OCR over an inline document and returns its full text.
	ProcessBytes(ctx context.Context, mimeType string, data []byte) (string, error)
	Close() error
}

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	Timeout          time.Duration
}

func DocumentConfigFromEnv() DocumentConfig {
	return DocumentConfig{
		ProjectID:        envutil.String("DOCUMENTAI_PROJECT_ID", envutil.String("GCP_PROJECT_ID", "")),
		Location:         envutil.String("DOCUMENTAI_LOCATION", "us"),
		ProcessorID:      envutil.String("DOCUMENTAI_PROCESSOR_ID", ""),
		ProcessorVersion: envutil.String("DOCUMENTAI_PROCESSOR_VERSION", ""),
		Timeout:          envutil.Seconds("DOCUMENTAI_TIMEOUT_SECONDS", 3*time.Minute),
	}
}

func (c DocumentConfig) ProcessorName() string {
	project := strings.TrimSpace(c.ProjectID)
	location := strings.TrimSpace(c.Location)
	processorID := strings.TrimSpace(c.ProcessorID)
	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if v := strings.TrimSpace(c.ProcessorVersion); v != "" {
		return base + "/processorVersions/" + v
	}
	return base
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	cfg       DocumentConfig
	name      string
}

func NewDocument(log *logger.Logger, cfg DocumentConfig) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	name := cfg.ProcessorName()
	if name == "" {
		return nil, fmt.Errorf("document ai: project, location and processor id are required")
	}
	slog := log.With("service", "gcp.Document")

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}

	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", name)
	return &documentService{log: slog, docClient: c, cfg: cfg, name: name}, nil
}

func (s *documentService) ProcessBytes(ctx context.Context, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.docClient.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: s.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
		// Only the flattened text is used.
		FieldMask: &fieldmaskpb.FieldMask{Paths: []string{"text"}},
	})
	if err != nil {
		return "", classifyProcessError(err)
	}
	if resp == nil || resp.GetDocument() == nil {
		return "", nil
	}
	return resp.GetDocument().GetText(), nil
}

func classifyProcessError(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrDocumentRejected, err)
	default:
		return fmt.Errorf("documentai ProcessDocument: %w", err)
	}
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}
