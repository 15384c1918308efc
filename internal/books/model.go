package books

import (
	"time"

	"bookstudio-backend/internal/blueprints"
)

// VoiceProfile governs the style of generated prose.
type VoiceProfile struct {
	Tone            string   `json:"tone"`
	Style           []string `json:"style"`
	VocabularyLevel string   `json:"vocabulary_level"`
}

// Book is a persisted manuscript owned by exactly one user. Blueprint is
// the accepted plan stored as an immutable snapshot for audit and for
// section outlines during chapter generation.
type Book struct {
	ID              string
	UserID          string
	Title           string
	Subtitle        string
	Description     string
	BookType        string
	TargetAudience  string
	TargetWordCount int
	VoiceProfile    *VoiceProfile
	Blueprint       blueprints.Blueprint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MetadataPatch carries the editable book metadata fields. Nil means
// leave unchanged.
type MetadataPatch struct {
	Title          *string       `json:"title"`
	Subtitle       *string       `json:"subtitle"`
	Description    *string       `json:"description"`
	TargetAudience *string       `json:"target_audience"`
	VoiceProfile   *VoiceProfile `json:"voice_profile"`
}
