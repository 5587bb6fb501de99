package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/disclosure-backend/internal/domain"
)

func SeedDisclosure(tb testing.TB, db *gorm.DB, docket, title string, createdAt time.Time) *types.Disclosure {
	tb.Helper()
	d := &types.Disclosure{
		ID:             uuid.New(),
		DocketNumber:   docket,
		Title:          title,
		Description:    "description of " + title,
		KeyDifferences: "differs",
		Status:         types.StatusPending,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	if err := db.Create(d).Error; err != nil {
		tb.Fatalf("seed disclosure: %v", err)
	}
	return d
}

func SeedInventor(tb testing.TB, db *gorm.DB, disclosureID uuid.UUID, name string, position int) *types.Inventor {
	tb.Helper()
	inv := &types.Inventor{
		DisclosureID: disclosureID,
		Name:         name,
		Position:     position,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.Create(inv).Error; err != nil {
		tb.Fatalf("seed inventor: %v", err)
	}
	return inv
}

func SeedHistory(tb testing.TB, db *gorm.DB, disclosureID uuid.UUID, status types.Status, at time.Time) *types.StatusHistoryEntry {
	tb.Helper()
	h := &types.StatusHistoryEntry{DisclosureID: disclosureID, Status: status, ChangedAt: at}
	if err := db.Create(h).Error; err != nil {
		tb.Fatalf("seed history: %v", err)
	}
	return h
}
