package services

import (
	"encoding/json"
	"testing"
)

func TestDisclosurePatchDecoding(t *testing.T) {
	var p DisclosurePatch
	if err := json.Unmarshal([]byte(`{"title":"T","review_notes":null}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !p.Title.Set || p.Title.Null || p.Title.Value != "T" {
		t.Fatalf("title: got=%+v", p.Title)
	}
	if !p.ReviewNotes.Set || !p.ReviewNotes.Null {
		t.Fatalf("review_notes: got=%+v", p.ReviewNotes)
	}
	if p.Status.Set || p.Description.Set || p.KeyDifferences.Set {
		t.Fatalf("absent keys must stay unset: got=%+v", p)
	}
	if p.IsEmpty() {
		t.Fatalf("patch should not be empty")
	}

	var empty DisclosurePatch
	if err := json.Unmarshal([]byte(`{"unknown":1}`), &empty); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !empty.IsEmpty() {
		t.Fatalf("patch with only unknown keys should be empty")
	}

	var bad DisclosurePatch
	if err := json.Unmarshal([]byte(`{"title":5}`), &bad); err == nil {
		t.Fatalf("expected type error")
	}
}
