package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/http/response"
	"github.com/yungbote/disclosure-backend/internal/platform/apierr"
)

const (
	msgNotFound             = "Disclosure not found"
	msgInternal             = "Internal server error"
	msgInsufficientContent  = "Could not extract sufficient text from PDF. The file may be image-based or corrupted."
	msgExtractionFailedBase = "Failed to extract information from document"
)

// classify maps a service error onto the status, code and client message.
// Details from unexpected failures never reach the client.
func classify(err error) *apierr.Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusRequestTimeout, "request_canceled", errors.New("Request canceled"))
	case errors.Is(err, types.ErrNotFound):
		return apierr.NotFound("not_found", errors.New(msgNotFound))
	case errors.Is(err, types.ErrInvalidStatus):
		return apierr.BadRequest("invalid_status", errors.New("Invalid status value"))
	case errors.Is(err, types.ErrNoOp):
		return apierr.BadRequest("no_fields", errors.New("No fields to update"))
	case errors.Is(err, types.ErrInvalidInput):
		return apierr.BadRequest("invalid_input", errors.New(capitalize(detail(err, types.ErrInvalidInput))))
	case errors.Is(err, types.ErrUnreadableDocument):
		return apierr.BadRequest("invalid_pdf", errors.New("Invalid PDF file: "+detail(err, types.ErrUnreadableDocument)))
	case errors.Is(err, types.ErrInsufficientContent):
		return apierr.BadRequest("insufficient_content", errors.New(msgInsufficientContent))
	case errors.Is(err, types.ErrMalformedExtraction):
		return apierr.Internal("extraction_failed", errors.New(msgExtractionFailedBase+": "+detail(err, types.ErrMalformedExtraction)))
	case errors.Is(err, types.ErrIncompleteExtraction):
		return apierr.Internal("extraction_failed", errors.New(msgExtractionFailedBase+": "+detail(err, types.ErrIncompleteExtraction)))
	case errors.Is(err, types.ErrExtractionFailed):
		return apierr.Internal("extraction_failed", errors.New(msgExtractionFailedBase))
	default:
		return apierr.Internal("internal", errors.New(msgInternal))
	}
}

// respondServiceError records the original error for the request log and
// renders the classified envelope.
func respondServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	ae := classify(err)
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

// detail strips the "<sentinel>: " prefix the services add when wrapping.
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
