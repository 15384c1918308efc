package blueprints

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseBlueprint converts raw model output into a validated Blueprint.
// The model may wrap its JSON in markdown code fences; those are stripped
// before parsing. Any parse or validation failure yields
// ErrMalformedBlueprint with no partially-populated result.
func ParseBlueprint(raw string) (Blueprint, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return Blueprint{}, fmt.Errorf("%w: empty output", ErrMalformedBlueprint)
	}

	var bp Blueprint
	if err := json.Unmarshal([]byte(cleaned), &bp); err != nil {
		return Blueprint{}, fmt.Errorf("%w: parse: %v", ErrMalformedBlueprint, err)
	}

	if err := validate(bp); err != nil {
		return Blueprint{}, fmt.Errorf("%w: %v", ErrMalformedBlueprint, err)
	}
	return bp, nil
}

func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func validate(bp Blueprint) error {
	if strings.TrimSpace(bp.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(bp.SubtitleOptions) == 0 {
		return fmt.Errorf("subtitle_options must not be empty")
	}
	for i, s := range bp.SubtitleOptions {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("subtitle_options[%d] is empty", i)
		}
	}
	if !validBookType(bp.BookType) {
		return fmt.Errorf("book_type %q is not recognized", bp.BookType)
	}
	if bp.TargetWordCount <= 0 {
		return fmt.Errorf("target_word_count must be positive, got %d", bp.TargetWordCount)
	}
	if len(bp.Chapters) == 0 {
		return fmt.Errorf("chapters must not be empty")
	}
	if len(bp.Chapters) > MaxChapters {
		return fmt.Errorf("chapters exceed cap of %d, got %d", MaxChapters, len(bp.Chapters))
	}
	for i, ch := range bp.Chapters {
		if strings.TrimSpace(ch.Title) == "" {
			return fmt.Errorf("chapters[%d].title is required", i)
		}
		if ch.TargetWordCount <= 0 {
			return fmt.Errorf("chapters[%d].target_word_count must be positive, got %d", i, ch.TargetWordCount)
		}
		for j, sec := range ch.Sections {
			if strings.TrimSpace(sec.Title) == "" {
				return fmt.Errorf("chapters[%d].sections[%d].title is required", i, j)
			}
			if sec.TargetWordCount <= 0 {
				return fmt.Errorf("chapters[%d].sections[%d].target_word_count must be positive, got %d", i, j, sec.TargetWordCount)
			}
		}
	}
	if bp.EstimatedCredits < 0 {
		return fmt.Errorf("estimated_credits must not be negative, got %d", bp.EstimatedCredits)
	}
	return nil
}
