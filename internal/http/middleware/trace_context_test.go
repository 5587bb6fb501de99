package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/disclosure-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil {
		t.Fatalf("trace data missing from request context")
	}
	if seen.RequestID != "req-123" {
		t.Fatalf("request id: want=%q got=%q", "req-123", seen.RequestID)
	}
	if seen.TraceID == "" {
		t.Fatalf("trace id should be generated")
	}
	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("%s header: want=%q got=%q", headerRequestID, "req-123", got)
	}
	if got := rec.Header().Get(headerTraceID); got != seen.TraceID {
		t.Fatalf("%s header: want=%q got=%q", headerTraceID, seen.TraceID, got)
	}
}
