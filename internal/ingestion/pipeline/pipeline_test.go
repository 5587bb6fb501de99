package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/ingestion/extractor"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type fakeText struct {
	text  string
	err   error
	calls int
}

func (f *fakeText) ExtractText(ctx context.Context, data []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeText) Name() string { return "fake" }

type fakeLLM struct {
	out      string
	err      error
	lastUser string
	calls    int
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.lastUser = user
	return f.out, f.err
}

func (f *fakeLLM) Model() string { return "gpt-4o" }

var longText = strings.Repeat("A FinFET gate structure with a novel spacer. ", 4)

func newPipeline(t *testing.T, text *fakeText, llm *fakeLLM) *Pipeline {
	t.Helper()
	prompt, err := LoadPrompt()
	if err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	p, err := New(logger.Nop(), text, llm, prompt, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

const goodJSON = `{"title":"T","description":"D","key_differences":"K","inventors":[{"name":"Ada","email":"ada@example.com"},{"name":"Bob"}]}`

func TestExtractHappyPath(t *testing.T) {
	llm := &fakeLLM{out: goodJSON}
	p := newPipeline(t, &fakeText{text: longText}, llm)

	res, err := p.Extract(context.Background(), []byte("%PDF-"), "Invention.PDF")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Title != "T" || res.Description != "D" || res.KeyDifferences != "K" {
		t.Fatalf("fields: got=%+v", res)
	}
	if len(res.Inventors) != 2 || res.Inventors[0].Name != "Ada" || res.Inventors[1].Name != "Bob" {
		t.Fatalf("inventors: got=%+v", res.Inventors)
	}
	if res.Inventors[0].Email == nil || *res.Inventors[0].Email != "ada@example.com" || res.Inventors[1].Email != nil {
		t.Fatalf("emails: got=%+v", res.Inventors)
	}
	if res.Model != "gpt-4o" || res.Truncated {
		t.Fatalf("metadata: got model=%q truncated=%v", res.Model, res.Truncated)
	}
	if !strings.Contains(llm.lastUser, longText) {
		t.Fatalf("prompt should embed document text")
	}
}

func TestExtractRejectsNonPDFBeforeReading(t *testing.T) {
	text := &fakeText{text: longText}
	llm := &fakeLLM{out: goodJSON}
	p := newPipeline(t, text, llm)
	for _, name := range []string{"notes.txt", "file.pdf.exe", ""} {
		if _, err := p.Extract(context.Background(), []byte("x"), name); !errors.Is(err, types.ErrInvalidInput) {
			t.Fatalf("Extract(%q): want ErrInvalidInput got=%v", name, err)
		}
	}
	if text.calls != 0 || llm.calls != 0 {
		t.Fatalf("collaborators called: text=%d llm=%d", text.calls, llm.calls)
	}
}

func TestExtractFailureKinds(t *testing.T) {
	cases := []struct {
		name string
		text *fakeText
		llm  *fakeLLM
		want error
	}{
		{"unreadable", &fakeText{err: errors.New("bad xref")}, &fakeLLM{out: goodJSON}, types.ErrUnreadableDocument},
		{"ocr outage", &fakeText{err: fmt.Errorf("%w: quota", extractor.ErrUnavailable)}, &fakeLLM{out: goodJSON}, types.ErrExtractionFailed},
		{"short text", &fakeText{text: strings.Repeat("x", 30)}, &fakeLLM{out: goodJSON}, types.ErrInsufficientContent},
		{"whitespace padded", &fakeText{text: "   " + strings.Repeat("x", 49) + "\n\n\n"}, &fakeLLM{out: goodJSON}, types.ErrInsufficientContent},
		{"llm down", &fakeText{text: longText}, &fakeLLM{err: errors.New("503")}, types.ErrExtractionFailed},
		{"not json", &fakeText{text: longText}, &fakeLLM{out: "Sure! Here is the data"}, types.ErrMalformedExtraction},
		{"json array", &fakeText{text: longText}, &fakeLLM{out: `[1,2]`}, types.ErrMalformedExtraction},
		{"json null", &fakeText{text: longText}, &fakeLLM{out: `null`}, types.ErrMalformedExtraction},
		{"missing title", &fakeText{text: longText}, &fakeLLM{out: `{"description":"D","key_differences":"K"}`}, types.ErrIncompleteExtraction},
		{"empty description", &fakeText{text: longText}, &fakeLLM{out: `{"title":"T","description":"  ","key_differences":"K"}`}, types.ErrIncompleteExtraction},
		{"empty list", &fakeText{text: longText}, &fakeLLM{out: `{"title":"T","description":"D","key_differences":[]}`}, types.ErrIncompleteExtraction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPipeline(t, tc.text, tc.llm)
			_, err := p.Extract(context.Background(), []byte("%PDF-"), "a.pdf")
			if !errors.Is(err, tc.want) {
				t.Fatalf("want=%v got=%v", tc.want, err)
			}
		})
	}
}

func TestExtractMissingFieldNamed(t *testing.T) {
	p := newPipeline(t, &fakeText{text: longText}, &fakeLLM{out: `{"title":"T","description":"D"}`})
	_, err := p.Extract(context.Background(), []byte("%PDF-"), "a.pdf")
	if err == nil || !strings.Contains(err.Error(), "key_differences") {
		t.Fatalf("error should name the field: got=%v", err)
	}
}

func TestExtractFencedJSONMatchesPlain(t *testing.T) {
	plain := newPipeline(t, &fakeText{text: longText}, &fakeLLM{out: goodJSON})
	fenced := newPipeline(t, &fakeText{text: longText}, &fakeLLM{out: "```json\n" + goodJSON + "\n```"})
	bare := newPipeline(t, &fakeText{text: longText}, &fakeLLM{out: "```\n" + goodJSON + "\n```"})

	want, err := plain.Extract(context.Background(), nil, "a.pdf")
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	for _, p := range []*Pipeline{fenced, bare} {
		got, err := p.Extract(context.Background(), nil, "a.pdf")
		if err != nil {
			t.Fatalf("fenced: %v", err)
		}
		if got.Title != want.Title || got.Description != want.Description || got.KeyDifferences != want.KeyDifferences || len(got.Inventors) != len(want.Inventors) {
			t.Fatalf("fenced result differs: want=%+v got=%+v", want, got)
		}
	}
}

func TestExtractJoinsListFields(t *testing.T) {
	llm := &fakeLLM{out: `{"title":"T","description":"D","key_differences":["a","b"]}`}
	res, err := newPipeline(t, &fakeText{text: longText}, llm).Extract(context.Background(), nil, "a.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.KeyDifferences != "• a\n• b" {
		t.Fatalf("key_differences: want=%q got=%q", "• a\n• b", res.KeyDifferences)
	}
	if res.Inventors == nil || len(res.Inventors) != 0 {
		t.Fatalf("inventors: want empty non-nil got=%#v", res.Inventors)
	}
}

func TestExtractInventorDefaults(t *testing.T) {
	llm := &fakeLLM{out: `{"title":"T","description":"D","key_differences":"K","inventors":[{"email":"x@y.z"},{"name":""},"Carol",42]}`}
	res, err := newPipeline(t, &fakeText{text: longText}, llm).Extract(context.Background(), nil, "a.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	names := []string{}
	for _, inv := range res.Inventors {
		names = append(names, inv.Name)
	}
	if strings.Join(names, ",") != "Unknown,Unknown,Carol" {
		t.Fatalf("names: got=%v", names)
	}

	llm.out = `{"title":"T","description":"D","key_differences":"K","inventors":"Ada"}`
	res, err = newPipeline(t, &fakeText{text: longText}, llm).Extract(context.Background(), nil, "a.pdf")
	if err != nil || len(res.Inventors) != 0 {
		t.Fatalf("non-list inventors: got=%+v err=%v", res, err)
	}
}

func TestExtractTruncatesLongText(t *testing.T) {
	text := strings.Repeat("é", DefaultMaxTextChars+10)
	llm := &fakeLLM{out: goodJSON}
	res, err := newPipeline(t, &fakeText{text: text}, llm).Extract(context.Background(), nil, "a.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncation")
	}
	want := strings.Repeat("é", DefaultMaxTextChars) + truncationMarker
	if !strings.Contains(llm.lastUser, want) || strings.Contains(llm.lastUser, want[:len(want)-len(truncationMarker)]+"é") {
		t.Fatalf("prompt does not carry exactly %d chars plus marker", DefaultMaxTextChars)
	}
	if res.TextChars != DefaultMaxTextChars+len([]rune(truncationMarker)) {
		t.Fatalf("text chars: got=%d", res.TextChars)
	}
}

func TestExtractCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	llm := &fakeLLM{err: context.Canceled}
	_, err := newPipeline(t, &fakeText{text: longText}, llm).Extract(ctx, nil, "a.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled got=%v", err)
	}
}

func TestParsePrompt(t *testing.T) {
	if _, err := ParsePrompt([]byte("system: hi\nuser: no placeholder\n")); err == nil {
		t.Fatalf("expected placeholder error")
	}
	p, err := ParsePrompt([]byte("system: hi\nuser: \"text={document_text}\"\n"))
	if err != nil {
		t.Fatalf("ParsePrompt: %v", err)
	}
	if got := p.Render("abc"); got != "text=abc" {
		t.Fatalf("Render: want=%q got=%q", "text=abc", got)
	}
}
