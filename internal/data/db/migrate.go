package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/disclosure-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Disclosure{},
		&types.Inventor{},
		&types.StatusHistoryEntry{},
	); err != nil {
		return err
	}
	return EnsureDocketSequence(db)
}

// EnsureDocketSequence creates the docket counter for the active dialect:
// a native sequence on Postgres, a single-row counter table on SQLite.
func EnsureDocketSequence(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case DriverPostgres:
		if err := db.Exec(`CREATE SEQUENCE IF NOT EXISTS docket_seq START WITH 1 INCREMENT BY 1`).Error; err != nil {
			return fmt.Errorf("create docket_seq: %w", err)
		}
	default:
		if err := db.Exec(`CREATE TABLE IF NOT EXISTS docket_counter (id INTEGER PRIMARY KEY CHECK (id = 1), value INTEGER NOT NULL)`).Error; err != nil {
			return fmt.Errorf("create docket_counter: %w", err)
		}
		if err := db.Exec(`INSERT OR IGNORE INTO docket_counter (id, value) VALUES (1, 0)`).Error; err != nil {
			return fmt.Errorf("seed docket_counter: %w", err)
		}
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Running auto migration", "driver", s.driver)
	return AutoMigrateAll(s.db)
}
