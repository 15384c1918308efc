package blueprints

import (
	"context"
	"errors"
	"time"

	"bookstudio-backend/internal/genlog"
	"bookstudio-backend/internal/llm"
	"bookstudio-backend/internal/shared/metrics"
	"bookstudio-backend/internal/shared/telemetry"
)

// Token budget sized for a full outline; generous on purpose so long plans
// are not truncated mid-JSON.
const blueprintMaxTokens = 4096

// Service orchestrates prompt building, the generation call, and strict
// validation into a blueprint. It has no persisted side effects, so a
// failed synthesis is safe to retry in full. Model labels ledger entries
// when the provider omits one from its completion.
type Service struct {
	LLM   llm.Client
	Model string
	Logs  *genlog.Service
}

// Synthesize produces a validated Blueprint from interview responses.
// Failures keep their kind: llm.ErrTransport / llm.ErrService /
// llm.ErrEmptyOutput for service trouble, ErrMalformedBlueprint for
// unusable output, ErrEmptyInput for an empty interview.
func (s *Service) Synthesize(ctx context.Context, responses []llm.InterviewResponse) (Blueprint, error) {
	if len(responses) == 0 {
		return Blueprint{}, ErrEmptyInput
	}

	metrics.IncBlueprintStarted()
	start := time.Now()

	prompt := llm.BuildBlueprintPrompt(responses)
	completion, err := s.LLM.Generate(ctx, llm.GenerateInput{
		System:    prompt.System,
		User:      prompt.User,
		MaxTokens: blueprintMaxTokens,
	})
	if err != nil {
		metrics.IncBlueprintFailed()
		telemetry.Error("blueprint.generate_failed", map[string]any{
			"error":       err.Error(),
			"duration_ms": durationMs(start),
		})
		return Blueprint{}, err
	}

	bp, err := ParseBlueprint(completion.Text)
	if err != nil {
		metrics.IncBlueprintFailed()
		telemetry.Error("blueprint.validate_failed", map[string]any{
			"error":       err.Error(),
			"duration_ms": durationMs(start),
		})
		return Blueprint{}, err
	}

	if s.Logs != nil {
		model := completion.Model
		if model == "" {
			model = s.Model
		}
		s.Logs.Append(ctx, genlog.Entry{
			ActionType:      genlog.ActionBlueprintGeneration,
			PromptExcerpt:   prompt.User,
			ResponseExcerpt: completion.Text,
			Model:           model,
			TokensUsed:      tokensUsed(completion.Usage),
			CreditsCharged:  0,
		})
	}

	metrics.IncBlueprintCompleted()
	metrics.ObserveGenerationDurationMs(durationMs(start))
	return bp, nil
}

// ServiceUnavailable reports whether the error should map to a 503-style
// "try again" response rather than a malformed-output 500.
func ServiceUnavailable(err error) bool {
	return errors.Is(err, llm.ErrTransport) ||
		errors.Is(err, llm.ErrService) ||
		errors.Is(err, llm.ErrEmptyOutput)
}

func tokensUsed(usage *llm.Usage) *int {
	if usage == nil {
		return nil
	}
	total := usage.Total()
	return &total
}

func durationMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
