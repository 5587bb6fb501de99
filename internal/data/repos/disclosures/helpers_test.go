package disclosures

import (
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/disclosure-backend/internal/data/repos/testutil"
)

// eachDB runs fn against SQLite and, when TEST_POSTGRES_DSN is set, inside a
// rolled-back Postgres transaction.
func eachDB(t *testing.T, fn func(t *testing.T, db *gorm.DB)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		fn(t, testutil.SQLite(t))
	})
	t.Run("postgres", func(t *testing.T) {
		db := testutil.DB(t)
		fn(t, testutil.Tx(t, db))
	})
}
