package blueprints

// MaxChapters caps how many chapter outlines a blueprint may carry.
const MaxChapters = 20

// BookTypes enumerates the accepted book_type values. The prompt schema
// text in internal/llm lists the same set; keep them in lockstep.
var BookTypes = []string{"fiction", "nonfiction", "guide", "memoir", "academic", "children", "other"}

// Blueprint is the AI-proposed book plan. It is transient: consumed by
// materialization or discarded, never persisted verbatim on its own
// (books keep an immutable snapshot).
type Blueprint struct {
	Title             string           `json:"title"`
	SubtitleOptions   []string         `json:"subtitle_options"`
	Description       string           `json:"description"`
	TargetAudience    string           `json:"target_audience"`
	BookType          string           `json:"book_type"`
	TargetWordCount   int              `json:"target_word_count"`
	Tone              string           `json:"tone"`
	Chapters          []ChapterOutline `json:"chapters"`
	ResearchNeeds     []string         `json:"research_needs"`
	MediaRequirements []string         `json:"media_requirements"`
	EstimatedCredits  int              `json:"estimated_credits"`
}

// ChapterOutline is one planned chapter inside a blueprint.
type ChapterOutline struct {
	Title           string           `json:"title"`
	Summary         string           `json:"summary"`
	TargetWordCount int              `json:"target_word_count"`
	Sections        []SectionOutline `json:"sections"`
}

// SectionOutline is one planned section inside a chapter outline.
// Section word counts are advisory relative to the chapter total but must
// individually be positive.
type SectionOutline struct {
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	TargetWordCount int    `json:"target_word_count"`
}

func validBookType(raw string) bool {
	for _, t := range BookTypes {
		if raw == t {
			return true
		}
	}
	return false
}
