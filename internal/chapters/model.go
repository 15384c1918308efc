package chapters

import (
	"strings"
	"time"
)

// Chapter statuses. This module only ever advances outline -> draft;
// marking a chapter final belongs to the editing surface.
const (
	StatusOutline = "outline"
	StatusDraft   = "draft"
	StatusFinal   = "final"
)

// Chapter is a persisted manuscript chapter belonging to one book.
// OrderIndex is unique per book and defines manuscript order.
type Chapter struct {
	ID              string
	BookID          string
	OrderIndex      int
	Title           string
	Summary         string
	TargetWordCount int
	Content         string
	WordCount       int
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CountWords is the canonical word count: split on whitespace, count
// non-empty tokens. No punctuation-aware tokenization anywhere.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
