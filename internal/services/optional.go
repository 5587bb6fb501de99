package services

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON key from an explicit null. The zero
// value is absent; UnmarshalJSON only runs for keys present in the body.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// DisclosurePatch is a partial update. Only review_notes may be cleared with
// null; a null for any other field is rejected.
type DisclosurePatch struct {
	Title          Optional[string] `json:"title"`
	Description    Optional[string] `json:"description"`
	KeyDifferences Optional[string] `json:"key_differences"`
	Status         Optional[string] `json:"status"`
	ReviewNotes    Optional[string] `json:"review_notes"`
}

func (p DisclosurePatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.KeyDifferences.Set && !p.Status.Set && !p.ReviewNotes.Set
}
