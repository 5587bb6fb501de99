package app

import (
	"gorm.io/gorm"

	repos "github.com/yungbote/disclosure-backend/internal/data/repos/disclosures"
	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

type Repos struct {
	Dockets       repos.DocketSequencer
	Disclosures   repos.DisclosureRepo
	Inventors     repos.InventorRepo
	StatusHistory repos.StatusHistoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Dockets:       repos.NewDocketSequencer(db, log),
		Disclosures:   repos.NewDisclosureRepo(db, log),
		Inventors:     repos.NewInventorRepo(db, log),
		StatusHistory: repos.NewStatusHistoryRepo(db, log),
	}
}
