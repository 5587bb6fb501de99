package disclosures

import "errors"

// Failure kinds shared by the extraction pipeline and the disclosure store.
// Callers wrap them with detail; route on them with errors.Is.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnreadableDocument   = errors.New("unreadable document")
	ErrInsufficientContent  = errors.New("insufficient content")
	ErrMalformedExtraction  = errors.New("malformed extraction")
	ErrIncompleteExtraction = errors.New("incomplete extraction")
	ErrExtractionFailed     = errors.New("structured extraction failed")

	ErrNotFound      = errors.New("disclosure not found")
	ErrNoOp          = errors.New("no fields to update")
	ErrInvalidStatus = errors.New("invalid status value")
	ErrBlobNotFound  = errors.New("blob not found")
)
