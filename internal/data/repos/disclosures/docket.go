package disclosures

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

// DocketSequencer hands out docket numbers. Committed values are never
// reused. On Postgres a rolled-back transaction leaves a gap; the SQLite
// counter rolls back with it and the number is handed out again.
type DocketSequencer interface {
	Next(dbc dbctx.Context) (string, error)
}

func FormatDocket(n int64) string {
	return fmt.Sprintf("IDF-%04d", n)
}

// NewDocketSequencer picks the implementation for the connected dialect.
func NewDocketSequencer(db *gorm.DB, baseLog *logger.Logger) DocketSequencer {
	repoLog := baseLog.With("repo", "DocketSequencer")
	if db.Dialector.Name() == "postgres" {
		return &pgDocketSequencer{db: db, log: repoLog}
	}
	return &counterDocketSequencer{db: db, log: repoLog}
}

type pgDocketSequencer struct {
	db  *gorm.DB
	log *logger.Logger
}

func (s *pgDocketSequencer) Next(dbc dbctx.Context) (string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Raw(`SELECT nextval('docket_seq')`).Scan(&n).Error; err != nil {
		return "", fmt.Errorf("docket nextval: %w", err)
	}
	return FormatDocket(n), nil
}

// counterDocketSequencer advances a single-row table with UPDATE ... RETURNING.
// The statement is atomic, so concurrent callers never read the same value.
// It runs inside the caller's transaction and is undone with it.
type counterDocketSequencer struct {
	db  *gorm.DB
	log *logger.Logger
}

func (s *counterDocketSequencer) Next(dbc dbctx.Context) (string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Raw(`UPDATE docket_counter SET value = value + 1 WHERE id = 1 RETURNING value`).
		Scan(&n).Error; err != nil {
		return "", fmt.Errorf("docket counter: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("docket counter: row missing")
	}
	return FormatDocket(n), nil
}
