package services

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	types "github.com/yungbote/disclosure-backend/internal/domain"
)

const csvTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

var csvHeader = []string{
	"Docket Number",
	"Title",
	"Description",
	"Key Differences",
	"Status",
	"Review Notes",
	"Original Filename",
	"Inventor Names",
	"Inventor Emails",
	"Created At",
	"Updated At",
}

// ExportCSV writes the filtered disclosures, newest first, with inventors
// flattened into "; "-joined columns.
func ExportCSV(ctx context.Context, svc DisclosureService, filter ListFilter, w io.Writer) (int, error) {
	rows, err := svc.ListWithInventors(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(rows), WriteCSV(w, rows)
}

func WriteCSV(w io.Writer, rows []*types.Disclosure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range rows {
		names := make([]string, 0, len(d.Inventors))
		emails := make([]string, 0, len(d.Inventors))
		for _, inv := range d.Inventors {
			names = append(names, inv.Name)
			if inv.Email != nil && *inv.Email != "" {
				emails = append(emails, *inv.Email)
			}
		}
		if err := cw.Write([]string{
			d.DocketNumber,
			d.Title,
			d.Description,
			d.KeyDifferences,
			string(d.Status),
			deref(d.ReviewNotes),
			deref(d.OriginalFilename),
			strings.Join(names, "; "),
			strings.Join(emails, "; "),
			csvTime(d.CreatedAt),
			csvTime(d.UpdatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(csvTimeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
