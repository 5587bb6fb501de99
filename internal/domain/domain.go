package domain

import "github.com/yungbote/disclosure-backend/internal/domain/disclosures"

const (
	StatusPending  = disclosures.StatusPending
	StatusReviewed = disclosures.StatusReviewed
	StatusApproved = disclosures.StatusApproved
	StatusRejected = disclosures.StatusRejected
)

type (
	Status             = disclosures.Status
	Disclosure         = disclosures.Disclosure
	Inventor           = disclosures.Inventor
	StatusHistoryEntry = disclosures.StatusHistoryEntry
	ExtractionResult   = disclosures.ExtractionResult
	ExtractedInventor  = disclosures.ExtractedInventor
)

var (
	ParseStatus = disclosures.ParseStatus
	AllStatuses = disclosures.AllStatuses
)

var (
	ErrInvalidInput         = disclosures.ErrInvalidInput
	ErrUnreadableDocument   = disclosures.ErrUnreadableDocument
	ErrInsufficientContent  = disclosures.ErrInsufficientContent
	ErrMalformedExtraction  = disclosures.ErrMalformedExtraction
	ErrIncompleteExtraction = disclosures.ErrIncompleteExtraction
	ErrExtractionFailed     = disclosures.ErrExtractionFailed
	ErrNotFound             = disclosures.ErrNotFound
	ErrNoOp                 = disclosures.ErrNoOp
	ErrInvalidStatus        = disclosures.ErrInvalidStatus
	ErrBlobNotFound         = disclosures.ErrBlobNotFound
)
