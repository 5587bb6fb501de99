package disclosures

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/disclosure-backend/internal/data/dberr"
	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type ListFilter struct {
	Search string
	Status *types.Status
}

type DisclosureRepo interface {
	Create(dbc dbctx.Context, d *types.Disclosure) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Disclosure, error)
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Disclosure, error)
	List(dbc dbctx.Context, filter ListFilter) ([]*types.Disclosure, error)
	UpdateColumns(dbc dbctx.Context, id uuid.UUID, cols map[string]interface{}) error
	SetPDFObjectKey(dbc dbctx.Context, id uuid.UUID, key string) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type disclosureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDisclosureRepo(db *gorm.DB, baseLog *logger.Logger) DisclosureRepo {
	repoLog := baseLog.With("repo", "DisclosureRepo")
	return &disclosureRepo{db: db, log: repoLog}
}

func (r *disclosureRepo) Create(dbc dbctx.Context, d *types.Disclosure) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(d).Error; err != nil {
		return dberr.Map("disclosure.create", err)
	}
	return nil
}

// GetByID returns dberr.ErrNotFound when no row matches.
func (r *disclosureRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Disclosure, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var d types.Disclosure
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, dberr.Map("disclosure.get", err)
	}
	return &d, nil
}

// GetByIDForUpdate reads the row with SELECT ... FOR UPDATE. It must run
// inside dbc.Tx; SQLite ignores the locking clause.
func (r *disclosureRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Disclosure, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var d types.Disclosure
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, dberr.Map("disclosure.lock", err)
	}
	return &d, nil
}

// List orders newest first. Search is a case-insensitive substring match over
// title, description and docket number.
func (r *disclosureRepo) List(dbc dbctx.Context, filter ListFilter) ([]*types.Disclosure, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Disclosure{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(searchClause(transaction), pattern, pattern, pattern)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	results := []*types.Disclosure{}
	if err := q.Order("created_at DESC").Order("docket_number DESC").Find(&results).Error; err != nil {
		return nil, dberr.Map("disclosure.list", err)
	}
	return results, nil
}

// UpdateColumns applies cols to one row and returns dberr.ErrNotFound when
// nothing matched.
func (r *disclosureRepo) UpdateColumns(dbc dbctx.Context, id uuid.UUID, cols map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(cols) == 0 {
		return nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Disclosure{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return dberr.Map("disclosure.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("disclosure.update", gorm.ErrRecordNotFound)
	}
	return nil
}

// SetPDFObjectKey records the blob key without touching updated_at.
func (r *disclosureRepo) SetPDFObjectKey(dbc dbctx.Context, id uuid.UUID, key string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Disclosure{}).
		Where("id = ?", id).
		UpdateColumn("pdf_object_key", key)
	if res.Error != nil {
		return dberr.Map("disclosure.set_pdf_key", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("disclosure.set_pdf_key", gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteByID removes the disclosure and its children. Child rows are deleted
// explicitly so the cascade holds even where foreign keys are not enforced;
// callers pass a transaction to make the three deletes atomic.
func (r *disclosureRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	tx := transaction.WithContext(dbc.Ctx)
	if err := tx.Where("disclosure_id = ?", id).Delete(&types.Inventor{}).Error; err != nil {
		return dberr.Map("disclosure.delete_inventors", err)
	}
	if err := tx.Where("disclosure_id = ?", id).Delete(&types.StatusHistoryEntry{}).Error; err != nil {
		return dberr.Map("disclosure.delete_history", err)
	}
	res := tx.Where("id = ?", id).Delete(&types.Disclosure{})
	if res.Error != nil {
		return dberr.Map("disclosure.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("disclosure.delete", gorm.ErrRecordNotFound)
	}
	return nil
}

// searchClause uses ILIKE on Postgres. SQLite's LOWER folds ASCII only, so
// non-ASCII search there is case-sensitive.
func searchClause(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return `title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR docket_number ILIKE ? ESCAPE '\'`
	}
	return `LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(docket_number) LIKE ? ESCAPE '\'`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
