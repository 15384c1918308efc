package generation

import (
	"context"
	"errors"
	"time"

	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/genlog"
	"bookstudio-backend/internal/llm"
	"bookstudio-backend/internal/shared/metrics"
	"bookstudio-backend/internal/shared/telemetry"
	"bookstudio-backend/internal/usage"
)

// Token budget sized for full-chapter output; larger than the blueprint
// budget.
const chapterMaxTokens = 8192

// CreditsFor computes the credits charged for a chapter generation call.
func CreditsFor(targetWordCount int) int {
	if targetWordCount <= 0 {
		return 0
	}
	return ((targetWordCount + 999) / 1000) * 20
}

// Request carries the chapter generation inputs. Voice and section fields
// are optional; the book's stored voice profile and blueprint snapshot
// fill the gaps.
type Request struct {
	BookID                 string
	ChapterID              string
	ChapterTitle           string
	ChapterSummary         string
	TargetWordCount        int
	VoiceProfile           *books.VoiceProfile
	PreviousChapterSummary string
	Sections               []blueprints.SectionOutline
}

// Result is the outcome of a chapter generation call. PersistWarning is
// non-nil when content was generated but the chapter save failed; the
// content is still returned so the caller can retry the save.
type Result struct {
	Content        string
	WordCount      int
	CreditsCharged int
	PersistWarning error
}

// Service orchestrates a single chapter generation: book context load,
// voice merge, generation call, word counting, best-effort persistence,
// and fire-and-forget ledger append.
type Service struct {
	Books    books.Repo
	Chapters chapters.Repo
	LLM      llm.Client
	Logs     *genlog.Service
	Usage    *usage.Service
	Leases   *ChapterLeases
}

// GenerateChapter runs the pipeline for one chapter. Concurrent calls for
// distinct chapters are safe; a concurrent call for the same chapter fails
// with ErrGenerationInFlight.
func (s *Service) GenerateChapter(ctx context.Context, userID string, req Request) (Result, error) {
	if req.BookID == "" || req.ChapterID == "" {
		return Result{}, errors.New("bookID and chapterID are required")
	}

	if s.Leases != nil {
		if !s.Leases.Acquire(req.ChapterID) {
			return Result{}, ErrGenerationInFlight
		}
		defer s.Leases.Release(req.ChapterID)
	}

	book, err := s.Books.GetByID(ctx, userID, req.BookID)
	if err != nil {
		return Result{}, err
	}
	chapter, err := s.Chapters.GetByID(ctx, req.ChapterID)
	if err != nil {
		return Result{}, err
	}
	if chapter.BookID != book.ID {
		return Result{}, chapters.ErrNotFound
	}

	if req.TargetWordCount <= 0 {
		req.TargetWordCount = chapter.TargetWordCount
	}
	if req.TargetWordCount <= 0 {
		return Result{}, errors.New("targetWordCount must be positive")
	}

	credits := CreditsFor(req.TargetWordCount)
	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, credits)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, usage.ErrLimitReached
		}
	}

	metrics.IncChapterStarted()
	start := time.Now()

	prompt := llm.BuildChapterPrompt(s.promptInput(book, chapter, req))
	completion, err := s.LLM.Generate(ctx, llm.GenerateInput{
		System:    prompt.System,
		User:      prompt.User,
		MaxTokens: chapterMaxTokens,
	})
	if err != nil {
		metrics.IncChapterFailed()
		telemetry.Error("generation.chapter_failed", map[string]any{
			"book_id":    req.BookID,
			"chapter_id": req.ChapterID,
			"error":      err.Error(),
		})
		return Result{}, err
	}

	wordCount := chapters.CountWords(completion.Text)
	result := Result{
		Content:        completion.Text,
		WordCount:      wordCount,
		CreditsCharged: credits,
	}

	// Best-effort save: a failed write must not discard the generated
	// content, only make the data loss visible.
	if err := s.Chapters.UpdateContent(ctx, req.ChapterID, completion.Text, wordCount, chapters.StatusDraft, time.Now().UTC()); err != nil {
		result.PersistWarning = err
		telemetry.Error("generation.persist_failed", map[string]any{
			"book_id":    req.BookID,
			"chapter_id": req.ChapterID,
			"error":      err.Error(),
		})
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, credits); err != nil {
			telemetry.Error("generation.usage_consume_failed", map[string]any{
				"user_id": userID,
				"credits": credits,
				"error":   err.Error(),
			})
		}
	}

	if s.Logs != nil {
		s.Logs.Append(ctx, genlog.Entry{
			BookID:          req.BookID,
			ChapterID:       req.ChapterID,
			ActionType:      genlog.ActionChapterGeneration,
			PromptExcerpt:   prompt.User,
			ResponseExcerpt: completion.Text,
			Model:           completion.Model,
			TokensUsed:      tokensUsed(completion.Usage),
			CreditsCharged:  credits,
		})
	}

	metrics.IncChapterCompleted()
	metrics.ObserveGenerationDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	return result, nil
}

func (s *Service) promptInput(book books.Book, chapter chapters.Chapter, req Request) llm.ChapterPromptInput {
	in := llm.ChapterPromptInput{
		BookTitle:              book.Title,
		BookType:               book.BookType,
		TargetAudience:         book.TargetAudience,
		ChapterTitle:           req.ChapterTitle,
		ChapterSummary:         req.ChapterSummary,
		TargetWordCount:        req.TargetWordCount,
		PreviousChapterSummary: req.PreviousChapterSummary,
	}
	if in.ChapterTitle == "" {
		in.ChapterTitle = chapter.Title
	}
	if in.ChapterSummary == "" {
		in.ChapterSummary = chapter.Summary
	}

	// Per-call voice overrides the book's stored profile; the prompt
	// builder applies fixed defaults when both are absent.
	voice := req.VoiceProfile
	if voice == nil {
		voice = book.VoiceProfile
	}
	if voice != nil {
		in.Tone = voice.Tone
		in.Style = voice.Style
		in.VocabularyLevel = voice.VocabularyLevel
	}

	sections := req.Sections
	if len(sections) == 0 {
		sections = sectionsFromSnapshot(book, chapter.OrderIndex)
	}
	for _, sec := range sections {
		in.Sections = append(in.Sections, llm.SectionPrompt{
			Title:           sec.Title,
			Summary:         sec.Summary,
			TargetWordCount: sec.TargetWordCount,
		})
	}
	return in
}

func sectionsFromSnapshot(book books.Book, orderIndex int) []blueprints.SectionOutline {
	if orderIndex < 0 || orderIndex >= len(book.Blueprint.Chapters) {
		return nil
	}
	return book.Blueprint.Chapters[orderIndex].Sections
}

func tokensUsed(u *llm.Usage) *int {
	if u == nil {
		return nil
	}
	total := u.Total()
	return &total
}
