package disclosures

// ExtractedInventor is one inventor as normalized from the extraction output.
type ExtractedInventor struct {
	Name  string
	Email *string
}

// ExtractionResult is the validated structured content of an uploaded document.
type ExtractionResult struct {
	Title          string
	Description    string
	KeyDifferences string
	Inventors      []ExtractedInventor

	Model     string
	TextChars int
	Truncated bool
}
