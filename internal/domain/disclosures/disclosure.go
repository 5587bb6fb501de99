package disclosures

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Disclosure struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocketNumber     string    `gorm:"column:docket_number;not null;uniqueIndex" json:"docket_number"`
	Title            string    `gorm:"column:title;not null" json:"title"`
	Description      string    `gorm:"column:description;not null" json:"description"`
	KeyDifferences   string    `gorm:"column:key_differences;not null" json:"key_differences"`
	Status           Status    `gorm:"column:status;not null;default:'pending';index" json:"status"`
	ReviewNotes      *string   `gorm:"column:review_notes" json:"review_notes"`
	OriginalFilename *string   `gorm:"column:original_filename" json:"original_filename"`
	PDFObjectKey     *string   `gorm:"column:pdf_object_key" json:"pdf_object_key"`

	// Model name, text length and truncation flag from the extraction run.
	ExtractionMetadata datatypes.JSON `gorm:"column:extraction_metadata" json:"extraction_metadata,omitempty"`

	// Loaded by the store, never persisted through this struct.
	Inventors     []*Inventor           `gorm:"-" json:"inventors"`
	StatusHistory []*StatusHistoryEntry `gorm:"-" json:"status_history,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Disclosure) TableName() string { return "disclosures" }

func (d *Disclosure) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Inventor struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	DisclosureID uuid.UUID   `gorm:"type:uuid;not null;index" json:"disclosure_id"`
	Disclosure   *Disclosure `gorm:"constraint:OnDelete:CASCADE;foreignKey:DisclosureID;references:ID" json:"-"`
	Name         string      `gorm:"column:name;not null" json:"name"`
	Email        *string     `gorm:"column:email" json:"email"`
	Position     int         `gorm:"column:position;not null;default:0" json:"-"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
}

func (Inventor) TableName() string { return "inventors" }

func (i *Inventor) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type StatusHistoryEntry struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	DisclosureID uuid.UUID   `gorm:"type:uuid;not null;index" json:"disclosure_id"`
	Disclosure   *Disclosure `gorm:"constraint:OnDelete:CASCADE;foreignKey:DisclosureID;references:ID" json:"-"`
	Status       Status      `gorm:"column:status;not null" json:"status"`
	ChangedAt    time.Time   `gorm:"column:changed_at;not null" json:"changed_at"`
}

func (StatusHistoryEntry) TableName() string { return "status_history" }

func (h *StatusHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
