package llm

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/blueprint_v1.txt
var blueprintSystemV1 string

// Voice defaults applied when neither the call nor the book supplies a
// voice profile. These must stay aligned with the boundary documentation.
const (
	DefaultTone            = "professional yet approachable"
	DefaultVocabularyLevel = "moderate"
)

// Prompt is a system/user instruction pair for a generation call.
type Prompt struct {
	System string
	User   string
}

// InterviewResponse is one question/answer pair from the author interview.
type InterviewResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BuildBlueprintPrompt maps ordered interview responses into the blueprint
// synthesis prompt. Pure and deterministic; the system text fixes the JSON
// schema the blueprint validator also encodes, so the two must change
// together.
func BuildBlueprintPrompt(responses []InterviewResponse) Prompt {
	formatted := make([]string, 0, len(responses))
	for _, r := range responses {
		formatted = append(formatted, fmt.Sprintf("**%s**\n%s", r.Question, r.Answer))
	}

	return Prompt{
		System: blueprintSystemV1,
		User:   "Based on these interview responses, create a comprehensive book blueprint:\n\n" + strings.Join(formatted, "\n\n"),
	}
}

// SectionPrompt describes one section of a chapter outline for prompt
// construction.
type SectionPrompt struct {
	Title           string
	Summary         string
	TargetWordCount int
}

// ChapterPromptInput carries everything needed to build a chapter prompt.
// Voice fields are expected to be pre-merged by the caller (call override
// over book profile); empty fields fall back to the fixed defaults.
type ChapterPromptInput struct {
	BookTitle              string
	BookType               string
	TargetAudience         string
	ChapterTitle           string
	ChapterSummary         string
	TargetWordCount        int
	Tone                   string
	Style                  []string
	VocabularyLevel        string
	PreviousChapterSummary string
	Sections               []SectionPrompt
}

// BuildChapterPrompt maps chapter context into the chapter generation
// prompt. Pure and deterministic.
func BuildChapterPrompt(in ChapterPromptInput) Prompt {
	tone := strings.TrimSpace(in.Tone)
	if tone == "" {
		tone = DefaultTone
	}
	vocab := strings.TrimSpace(in.VocabularyLevel)
	if vocab == "" {
		vocab = DefaultVocabularyLevel
	}
	audience := strings.TrimSpace(in.TargetAudience)
	if audience == "" {
		audience = "general readers"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert author writing a chapter for %q.\n", in.BookTitle)
	fmt.Fprintf(&b, "This is a %s book targeting: %s.\n\n", in.BookType, audience)

	b.WriteString("Writing style requirements:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", tone)
	fmt.Fprintf(&b, "- Vocabulary level: %s\n", vocab)
	if len(in.Style) > 0 {
		fmt.Fprintf(&b, "- Style notes: %s\n", strings.Join(in.Style, ", "))
	}
	b.WriteString("- Write engaging, professional content\n")
	b.WriteString("- Use clear paragraph breaks\n")
	b.WriteString("- Include relevant examples and explanations\n")
	b.WriteString("- Maintain consistent voice throughout\n\n")

	fmt.Fprintf(&b, "Target word count: approximately %d words.\n", in.TargetWordCount)
	if len(in.Sections) > 0 {
		b.WriteString("\nFollow this section structure:")
		for i, s := range in.Sections {
			fmt.Fprintf(&b, "\n%d. %s: %s (~%d words)", i+1, s.Title, s.Summary, s.TargetWordCount)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nWrite the complete chapter content. Use markdown formatting for headings (##, ###), emphasis (*italic*, **bold**), and lists where appropriate.\n")
	b.WriteString("Do NOT include the chapter title as a heading - it will be added separately.\n")
	if strings.TrimSpace(in.PreviousChapterSummary) != "" {
		fmt.Fprintf(&b, "\nPrevious chapter context: %s\n", in.PreviousChapterSummary)
	}

	return Prompt{
		System: b.String(),
		User:   fmt.Sprintf("Write Chapter: %q\n\nChapter summary: %s\n\nWrite the complete chapter now.", in.ChapterTitle, in.ChapterSummary),
	}
}
