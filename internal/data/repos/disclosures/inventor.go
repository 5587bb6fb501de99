package disclosures

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/data/dberr"
	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type InventorRepo interface {
	Create(dbc dbctx.Context, inventors []*types.Inventor) ([]*types.Inventor, error)
	ListByDisclosureID(dbc dbctx.Context, disclosureID uuid.UUID) ([]*types.Inventor, error)
	ListByDisclosureIDs(dbc dbctx.Context, disclosureIDs []uuid.UUID) (map[uuid.UUID][]*types.Inventor, error)
}

type inventorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInventorRepo(db *gorm.DB, baseLog *logger.Logger) InventorRepo {
	repoLog := baseLog.With("repo", "InventorRepo")
	return &inventorRepo{db: db, log: repoLog}
}

func (r *inventorRepo) Create(dbc dbctx.Context, inventors []*types.Inventor) ([]*types.Inventor, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(inventors) == 0 {
		return []*types.Inventor{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&inventors).Error; err != nil {
		return nil, dberr.Map("inventor.create", err)
	}
	return inventors, nil
}

func (r *inventorRepo) ListByDisclosureID(dbc dbctx.Context, disclosureID uuid.UUID) ([]*types.Inventor, error) {
	byID, err := r.ListByDisclosureIDs(dbc, []uuid.UUID{disclosureID})
	if err != nil {
		return nil, err
	}
	out := byID[disclosureID]
	if out == nil {
		out = []*types.Inventor{}
	}
	return out, nil
}

// ListByDisclosureIDs loads inventors for many disclosures in one query,
// each slice in extraction order.
func (r *inventorRepo) ListByDisclosureIDs(dbc dbctx.Context, disclosureIDs []uuid.UUID) (map[uuid.UUID][]*types.Inventor, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[uuid.UUID][]*types.Inventor, len(disclosureIDs))
	if len(disclosureIDs) == 0 {
		return out, nil
	}
	var rows []*types.Inventor
	if err := transaction.WithContext(dbc.Ctx).
		Where("disclosure_id IN ?", disclosureIDs).
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, dberr.Map("inventor.list", err)
	}
	for _, inv := range rows {
		out[inv.DisclosureID] = append(out[inv.DisclosureID], inv)
	}
	return out, nil
}
