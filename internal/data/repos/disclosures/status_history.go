package disclosures

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/data/dberr"
	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// StatusHistoryRepo is append-only.
type StatusHistoryRepo interface {
	Append(dbc dbctx.Context, entry *types.StatusHistoryEntry) error
	ListByDisclosureID(dbc dbctx.Context, disclosureID uuid.UUID) ([]*types.StatusHistoryEntry, error)
}

type statusHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatusHistoryRepo(db *gorm.DB, baseLog *logger.Logger) StatusHistoryRepo {
	repoLog := baseLog.With("repo", "StatusHistoryRepo")
	return &statusHistoryRepo{db: db, log: repoLog}
}

func (r *statusHistoryRepo) Append(dbc dbctx.Context, entry *types.StatusHistoryEntry) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(entry).Error; err != nil {
		return dberr.Map("status_history.append", err)
	}
	return nil
}

// ListByDisclosureID returns entries most recent first.
func (r *statusHistoryRepo) ListByDisclosureID(dbc dbctx.Context, disclosureID uuid.UUID) ([]*types.StatusHistoryEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.StatusHistoryEntry{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("disclosure_id = ?", disclosureID).
		Order("changed_at DESC").
		Find(&results).Error; err != nil {
		return nil, dberr.Map("status_history.list", err)
	}
	return results, nil
}
