package handlers

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/disclosure-backend/internal/domain"
)

type disclosureJSON struct {
	ID               uuid.UUID    `json:"id"`
	DocketNumber     string       `json:"docket_number"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	KeyDifferences   string       `json:"key_differences"`
	Status           types.Status `json:"status"`
	ReviewNotes      *string      `json:"review_notes"`
	OriginalFilename *string      `json:"original_filename"`
	PDFObjectKey     *string      `json:"pdf_object_key"`
	HasPDF           bool         `json:"has_pdf"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type inventorJSON struct {
	ID           uuid.UUID `json:"id"`
	DisclosureID uuid.UUID `json:"disclosure_id"`
	Name         string    `json:"name"`
	Email        *string   `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

type statusHistoryJSON struct {
	ID           uuid.UUID    `json:"id"`
	DisclosureID uuid.UUID    `json:"disclosure_id"`
	Status       types.Status `json:"status"`
	ChangedAt    time.Time    `json:"changed_at"`
}

// disclosureDetailJSON always renders both child lists, empty or not.
type disclosureDetailJSON struct {
	disclosureJSON
	Inventors     []inventorJSON      `json:"inventors"`
	StatusHistory []statusHistoryJSON `json:"status_history"`
}

func toDisclosureJSON(d *types.Disclosure) disclosureJSON {
	return disclosureJSON{
		ID:               d.ID,
		DocketNumber:     d.DocketNumber,
		Title:            d.Title,
		Description:      d.Description,
		KeyDifferences:   d.KeyDifferences,
		Status:           d.Status,
		ReviewNotes:      d.ReviewNotes,
		OriginalFilename: d.OriginalFilename,
		PDFObjectKey:     d.PDFObjectKey,
		HasPDF:           d.PDFObjectKey != nil && *d.PDFObjectKey != "",
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toDisclosureList(rows []*types.Disclosure) []disclosureJSON {
	out := make([]disclosureJSON, 0, len(rows))
	for _, d := range rows {
		if d != nil {
			out = append(out, toDisclosureJSON(d))
		}
	}
	return out
}

func toDisclosureDetail(d *types.Disclosure) disclosureDetailJSON {
	out := disclosureDetailJSON{
		disclosureJSON: toDisclosureJSON(d),
		Inventors:      make([]inventorJSON, 0, len(d.Inventors)),
		StatusHistory:  make([]statusHistoryJSON, 0, len(d.StatusHistory)),
	}
	for _, inv := range d.Inventors {
		if inv == nil {
			continue
		}
		out.Inventors = append(out.Inventors, inventorJSON{
			ID:           inv.ID,
			DisclosureID: inv.DisclosureID,
			Name:         inv.Name,
			Email:        inv.Email,
			CreatedAt:    inv.CreatedAt,
		})
	}
	for _, h := range d.StatusHistory {
		if h == nil {
			continue
		}
		out.StatusHistory = append(out.StatusHistory, statusHistoryJSON{
			ID:           h.ID,
			DisclosureID: h.DisclosureID,
			Status:       h.Status,
			ChangedAt:    h.ChangedAt,
		})
	}
	return out
}
