package gcp

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDocumentConfigProcessorName(t *testing.T) {
	cfg := DocumentConfig{ProjectID: "p", Location: "us", ProcessorID: "abc"}
	if got, want := cfg.ProcessorName(), "projects/p/locations/us/processors/abc"; got != want {
		t.Fatalf("ProcessorName: want=%q got=%q", want, got)
	}
	cfg.ProcessorVersion = "rc"
	if got, want := cfg.ProcessorName(), "projects/p/locations/us/processors/abc/processorVersions/rc"; got != want {
		t.Fatalf("ProcessorName version: want=%q got=%q", want, got)
	}
	if got := (DocumentConfig{Location: "us"}).ProcessorName(); got != "" {
		t.Fatalf("ProcessorName incomplete: want empty got=%q", got)
	}
}

func TestDocumentConfigFromEnv(t *testing.T) {
	t.Setenv("DOCUMENTAI_PROJECT_ID", "")
	t.Setenv("GCP_PROJECT_ID", "fallback-project")
	t.Setenv("DOCUMENTAI_PROCESSOR_ID", "proc")
	t.Setenv("DOCUMENTAI_LOCATION", "")
	cfg := DocumentConfigFromEnv()
	if cfg.ProjectID != "fallback-project" || cfg.Location != "us" || cfg.ProcessorID != "proc" {
		t.Fatalf("DocumentConfigFromEnv: got=%+v", cfg)
	}
}

func TestNewDocumentRequiresProcessor(t *testing.T) {
	if _, err := NewDocument(nil, DocumentConfig{}); err == nil {
		t.Fatalf("NewDocument(nil logger): want error")
	}
}

func TestClassifyProcessError(t *testing.T) {
	rejected := classifyProcessError(status.Error(codes.InvalidArgument, "Unsupported input file format"))
	if !errors.Is(rejected, ErrDocumentRejected) {
		t.Fatalf("InvalidArgument: want ErrDocumentRejected got=%v", rejected)
	}
	outage := classifyProcessError(status.Error(codes.Unavailable, "try again"))
	if errors.Is(outage, ErrDocumentRejected) {
		t.Fatalf("Unavailable: should not be ErrDocumentRejected: %v", outage)
	}
	if status.Code(errors.Unwrap(outage)) != codes.Unavailable {
		t.Fatalf("Unavailable: wrapped code lost: %v", outage)
	}
}
