package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/disclosure-backend/internal/observability"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
	"github.com/yungbote/disclosure-backend/internal/platform/redis"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 128
)

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key. A nil store disables it.
func Idempotency(store redis.IdempotencyStore, log *logger.Logger) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		m := observability.Current()
		if len(key) > maxIdempotencyKeyLength {
			abortJSON(c, http.StatusBadRequest, "invalid_idempotency_key", "Idempotency-Key too long")
			return
		}

		body, err := readAndRestoreBody(c.Request)
		if err != nil {
			if IsBodyTooLarge(err) {
				abortJSON(c, http.StatusBadRequest, "body_too_large", "File too large")
				return
			}
			abortJSON(c, http.StatusBadRequest, "invalid_body", "Failed to read request body")
			return
		}
		hash := requestHash(c.Request.Method, c.Request.URL.Path, body)

		ctx := c.Request.Context()
		rec, reserved, err := store.Reserve(ctx, key, hash)
		if err != nil {
			if log != nil {
				log.Warn("idempotency store unavailable; continuing without it", "error", err)
			}
			m.IncIdempotency("store_error")
			c.Next()
			return
		}

		if !reserved {
			switch {
			case rec.RequestHash != hash:
				m.IncIdempotency("mismatch")
				abortJSON(c, http.StatusConflict, "idempotency_key_reused", "Idempotency-Key reuse with different request")
			case rec.Pending():
				m.IncIdempotency("in_progress")
				abortJSON(c, http.StatusConflict, "idempotency_in_progress", "A request with this Idempotency-Key is in progress")
			default:
				m.IncIdempotency("replayed")
				c.Header(IdempotentReplayedHeader, "true")
				ct := rec.ContentType
				if ct == "" {
					ct = "application/json; charset=utf-8"
				}
				c.Data(rec.Status, ct, rec.Body)
				c.Abort()
			}
			return
		}

		m.IncIdempotency("reserved")
		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		// The handler may have finished after the client went away.
		storeCtx := context.WithoutCancel(ctx)
		status := cw.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(storeCtx, key); err != nil && log != nil {
				log.Warn("idempotency release failed", "error", err)
			}
			return
		}
		done := redis.IdempotencyRecord{
			RequestHash: hash,
			Status:      status,
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		}
		if err := store.Complete(storeCtx, key, done); err != nil && log != nil {
			log.Warn("idempotency complete failed", "error", err)
		}
	}
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	_ = c.Error(errors.New(msg))
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": msg, "code": code}})
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
