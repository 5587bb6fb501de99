package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/platform/envutil"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	extractions        *CounterVec
	disclosureWrites   *CounterVec
	blobOperations     *CounterVec
	idempotencyReplays *CounterVec

	dbStats *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process-wide metrics, or nil when metrics are disabled.
// Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("Metrics enabled")
		}
	})
	return instance
}

func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("idf_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"idf_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		apiInflight: NewGauge("idf_api_inflight_requests", "In-flight API requests."),

		llmRequests: NewCounterVec("idf_llm_requests_total", "Structured extraction calls by model/status.", []string{"model", "status"}),
		llmLatency: NewHistogramVec(
			"idf_llm_request_duration_seconds",
			"Structured extraction call latency in seconds, retries included.",
			[]string{"model"},
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		),
		llmTokens: NewCounterVec("idf_llm_tokens_total", "Tokens consumed by model/kind.", []string{"model", "kind"}),

		extractions:        NewCounterVec("idf_extractions_total", "Extraction pipeline runs by outcome.", []string{"outcome"}),
		disclosureWrites:   NewCounterVec("idf_disclosure_writes_total", "Disclosure store writes by operation.", []string{"op"}),
		blobOperations:     NewCounterVec("idf_blob_operations_total", "Blob attach/remove results by operation/outcome.", []string{"op", "outcome"}),
		idempotencyReplays: NewCounterVec("idf_idempotency_total", "Idempotency-Key handling by result.", []string{"result"}),

		dbStats: NewGaugeVec("idf_db_pool", "database/sql pool statistics.", []string{"stat"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.extractions, m.disclosureWrites, m.blobOperations, m.idempotencyReplays,
		m.dbStats,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

// IncExtraction records one pipeline run; outcome is "ok" or the failure kind.
func (m *Metrics) IncExtraction(outcome string) {
	if m == nil {
		return
	}
	m.extractions.Inc(outcome)
}

func (m *Metrics) IncDisclosureWrite(op string) {
	if m == nil {
		return
	}
	m.disclosureWrites.Inc(op)
}

func (m *Metrics) IncBlobOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.blobOperations.Inc(op, outcome)
}

func (m *Metrics) BlobOperationCount(op, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.blobOperations.Value(op, outcome)
}

func (m *Metrics) IncIdempotency(result string) {
	if m == nil {
		return
	}
	m.idempotencyReplays.Inc(result)
}

// StartDBCollector samples connection pool stats until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}
