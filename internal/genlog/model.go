package genlog

import "time"

// Action types recorded in the ledger.
const (
	ActionBlueprintGeneration = "blueprint_generation"
	ActionChapterGeneration   = "chapter_generation"
)

// Excerpt limits keep the audit trail bounded; full prompts and responses
// are never stored.
const (
	PromptExcerptLimit   = 1000
	ResponseExcerptLimit = 5000
)

// Entry is one append-only audit record per generation call. Immutable
// once written.
type Entry struct {
	ID              string
	BookID          string
	ChapterID       string
	ActionType      string
	PromptExcerpt   string
	ResponseExcerpt string
	Model           string
	TokensUsed      *int
	CreditsCharged  int
	CreatedAt       time.Time
}
