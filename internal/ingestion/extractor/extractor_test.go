package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// buildPDF writes a single-font PDF with one page per entry in pages.
func buildPDF(pages ...string) []byte {
	var objs []string
	n := len(pages)
	// 1 catalog, 2 pages, 3 font, then (page, content) pairs.
	kids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		}
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPDFExtractsPagesInOrder(t *testing.T) {
	data := buildPDF("First page about FinFET", "", "Second page")
	text, err := NewPDF(logger.Nop()).ExtractText(context.Background(), data)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	first := strings.Index(text, "First page about FinFET")
	second := strings.Index(text, "Second page")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("page text missing or out of order: %q", text)
	}
	if !strings.Contains(text, "\n\n") {
		t.Fatalf("pages should be separated by a blank line: %q", text)
	}
}

func TestPDFRejectsNonPDF(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello world"), []byte("%PDF-1.4 garbage without xref")} {
		if _, err := NewPDF(logger.Nop()).ExtractText(context.Background(), data); err == nil {
			t.Fatalf("ExtractText(%q): expected error", data)
		}
	}
}

type fakeDocument struct {
	text string
	err  error
	mime string
}

func (f *fakeDocument) ProcessBytes(ctx context.Context, mimeType string, data []byte) (string, error) {
	f.mime = mimeType
	return f.text, f.err
}

func (f *fakeDocument) Close() error { return nil }

func TestDocumentAIExtractor(t *testing.T) {
	doc := &fakeDocument{text: "ocr text"}
	ex := NewDocumentAI(logger.Nop(), doc)
	text, err := ex.ExtractText(context.Background(), []byte("%PDF-1.7 ..."))
	if err != nil || text != "ocr text" {
		t.Fatalf("ExtractText: want=%q got=%q err=%v", "ocr text", text, err)
	}
	if doc.mime != "application/pdf" {
		t.Fatalf("mime: want=application/pdf got=%q", doc.mime)
	}

	doc.err = errors.New("quota")
	if _, err := ex.ExtractText(context.Background(), []byte("%PDF-1.7 ...")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("quota: want ErrUnavailable got=%v", err)
	}

	doc.err = fmt.Errorf("%w: unsupported", gcp.ErrDocumentRejected)
	_, err = ex.ExtractText(context.Background(), []byte("%PDF-1.7 ..."))
	if !errors.Is(err, gcp.ErrDocumentRejected) || errors.Is(err, ErrUnavailable) {
		t.Fatalf("rejected: want ErrDocumentRejected got=%v", err)
	}
}

func TestNewSelectsExtractor(t *testing.T) {
	ex, err := New("", logger.Nop(), nil)
	if err != nil || ex.Name() != KindPDF {
		t.Fatalf("default extractor: got=%v err=%v", ex, err)
	}
	if _, err := New(KindDocumentAI, logger.Nop(), nil); err == nil {
		t.Fatalf("documentai without client: expected error")
	}
	ex, err = New("DocumentAI", logger.Nop(), &fakeDocument{})
	if err != nil || ex.Name() != KindDocumentAI {
		t.Fatalf("documentai extractor: got=%v err=%v", ex, err)
	}
	if _, err := New("tesseract", logger.Nop(), nil); err == nil {
		t.Fatalf("unknown kind: expected error")
	}
}
