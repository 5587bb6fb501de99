package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/http/middleware"
	"github.com/yungbote/disclosure-backend/internal/http/response"
	"github.com/yungbote/disclosure-backend/internal/ingestion/pipeline"
	"github.com/yungbote/disclosure-backend/internal/platform/ctxutil"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
	"github.com/yungbote/disclosure-backend/internal/services"
)

const defaultPDFName = "disclosure.pdf"

type DisclosureHandler struct {
	log         *logger.Logger
	disclosures services.DisclosureService
	uploads     services.UploadService
	attachments services.AttachmentManager
}

func NewDisclosureHandler(
	baseLog *logger.Logger,
	disclosures services.DisclosureService,
	uploads services.UploadService,
	attachments services.AttachmentManager,
) *DisclosureHandler {
	return &DisclosureHandler{
		log:         baseLog.With("handler", "DisclosureHandler"),
		disclosures: disclosures,
		uploads:     uploads,
		attachments: attachments,
	}
}

// GET /api/disclosures?search=&status=
func (h *DisclosureHandler) List(c *gin.Context) {
	rows, err := h.disclosures.List(c.Request.Context(), listFilter(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toDisclosureList(rows))
}

// GET /api/disclosures/export/csv?search=&status=
func (h *DisclosureHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	n, err := services.ExportCSV(c.Request.Context(), h.disclosures, listFilter(c), &buf)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.log.Debug("CSV export", append(ctxutil.LogFields(c.Request.Context()), "rows", n)...)
	c.Header("Content-Disposition", "attachment; filename=disclosures.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GET /api/disclosures/:id
func (h *DisclosureHandler) Get(c *gin.Context) {
	id, ok := disclosureID(c)
	if !ok {
		return
	}
	d, err := h.disclosures.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toDisclosureDetail(d))
}

// POST /api/disclosures/upload
// multipart form, field "file"
func (h *DisclosureHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.RespondError(c, http.StatusBadRequest, "body_too_large", errors.New("File too large"))
			return
		}
		response.RespondError(c, http.StatusBadRequest, "missing_file", errors.New("No file uploaded"))
		return
	}
	// Reject by name before touching the bytes.
	if err := pipeline.ValidateFilename(fh.Filename); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", errors.New("Only PDF files are accepted"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", errors.New("Failed to read uploaded file"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", errors.New("Failed to read uploaded file"))
		return
	}

	d, err := h.uploads.Upload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"disclosure": toDisclosureDetail(d),
		"message":    "Disclosure created successfully",
	})
}

// PATCH /api/disclosures/:id
// body: any of title, description, key_differences, status, review_notes
func (h *DisclosureHandler) Update(c *gin.Context) {
	id, ok := disclosureID(c)
	if !ok {
		return
	}
	var patch services.DisclosurePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("Invalid request body"))
		return
	}
	d, err := h.disclosures.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toDisclosureJSON(d))
}

// DELETE /api/disclosures/:id
func (h *DisclosureHandler) Delete(c *gin.Context) {
	id, ok := disclosureID(c)
	if !ok {
		return
	}
	if err := h.disclosures.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondMessage(c, "Disclosure deleted successfully")
}

// GET /api/disclosures/:id/pdf
func (h *DisclosureHandler) DownloadPDF(c *gin.Context) {
	id, ok := disclosureID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	d, err := h.disclosures.Get(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if d.PDFObjectKey == nil || *d.PDFObjectKey == "" {
		response.RespondError(c, http.StatusNotFound, "pdf_not_found", errors.New("PDF not available for this disclosure"))
		return
	}
	data, err := h.attachments.Fetch(ctx, *d.PDFObjectKey)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, types.ErrBlobNotFound) {
			response.RespondError(c, http.StatusNotFound, "pdf_not_found", errors.New("PDF not available for this disclosure"))
			return
		}
		h.log.Error("PDF fetch failed", append(ctxutil.LogFields(ctx), "disclosure_id", id, "key", *d.PDFObjectKey, "error", err)...)
		response.RespondError(c, http.StatusInternalServerError, "pdf_fetch_failed", errors.New("Failed to retrieve PDF"))
		return
	}

	name := defaultPDFName
	if d.OriginalFilename != nil && strings.TrimSpace(*d.OriginalFilename) != "" {
		name = *d.OriginalFilename
	}
	c.Header("Content-Disposition", contentDisposition(name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func listFilter(c *gin.Context) services.ListFilter {
	f := services.ListFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		// Unknown values filter exactly and match nothing.
		s := types.Status(raw)
		f.Status = &s
	}
	return f
}

// disclosureID parses :id; a value that is not a uuid cannot name a row.
func disclosureID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New(msgNotFound))
		return uuid.Nil, false
	}
	return id, true
}

func contentDisposition(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r < 0x20 || r == 0x7f:
			return '_'
		case r > 0x7e:
			return '_'
		}
		return r
	}, name)
	out := fmt.Sprintf("attachment; filename=\"%s\"", safe)
	if safe != name {
		out += "; filename*=UTF-8''" + url.PathEscape(name)
	}
	return out
}
