package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Second)
	m.IncBlobOperation("attach", "degraded")
	m.ObserveLLMRequest("gpt-4o", "200", time.Second, 1, 1)
	if got := m.BlobOperationCount("attach", "degraded"); got != 0 {
		t.Fatalf("nil metrics count: want=0 got=%v", got)
	}
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := New()
	m.ObserveAPI("POST", "/api/disclosures/upload", "200", 150*time.Millisecond)
	m.IncBlobOperation("remove", "degraded")
	m.IncBlobOperation("remove", "degraded")
	m.ObserveLLMRequest("gpt-4o", "200", 2*time.Second, 120, 80)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`idf_api_requests_total{method="POST",route="/api/disclosures/upload",status="200"} 1.000000`,
		`idf_blob_operations_total{op="remove",outcome="degraded"} 2.000000`,
		`idf_llm_tokens_total{model="gpt-4o",kind="input"} 120.000000`,
		`idf_api_request_duration_seconds_bucket{method="POST",route="/api/disclosures/upload",le="0.25"} 1`,
		`idf_api_request_duration_seconds_bucket{method="POST",route="/api/disclosures/upload",le="+Inf"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
	if got := m.BlobOperationCount("remove", "degraded"); got != 2 {
		t.Fatalf("BlobOperationCount: want=2 got=%v", got)
	}
}

func TestLabelEscaping(t *testing.T) {
	if got := labelString([]string{"a"}, []string{"x\"y"}); got != `{a="x\"y"}` {
		t.Fatalf("labelString: got=%s", got)
	}
	if got := labelString([]string{"a", "b"}, []string{"v"}); got != `{a="v",b="unknown"}` {
		t.Fatalf("labelString missing: got=%s", got)
	}
}
