// Package extractor asks the model to evaluate a finished conversation and turns
// its reply into a scorecard or an analysis record.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/doorstep/internal/anthropic"
	"github.com/MikeSquared-Agency/doorstep/internal/domain"
	"github.com/MikeSquared-Agency/doorstep/internal/prompt"
)

// Completer is the model call used by the extractor.
type Completer interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

type Extractor struct {
	llm       Completer
	maxTokens int
	logger    *slog.Logger
}

func New(llm Completer, maxTokens int, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, maxTokens: maxTokens, logger: logger}
}

// Scorecard asks the model for a free-text scorecard of the rendered transcript.
func (e *Extractor) Scorecard(ctx context.Context, transcript string) (string, error) {
	raw, err := e.complete(ctx, "scorecard", prompt.ScorecardPrompt, transcript)
	if err != nil {
		return "", err
	}
	return ExtractScorecard(raw), nil
}

// Analyze asks the model for a JSON analysis of the rendered transcript.
func (e *Extractor) Analyze(ctx context.Context, transcript string) (domain.AnalysisRecord, error) {
	raw, err := e.complete(ctx, "analysis", prompt.AnalysisPrompt, transcript)
	if err != nil {
		return domain.AnalysisRecord{}, err
	}

	rec, err := ExtractAnalysis(raw)
	if err != nil {
		var mre *domain.MalformedResponseError
		if errors.As(err, &mre) {
			e.logger.Error("failed to parse analysis response",
				"error", mre.Err,
				"raw", mre.Raw,
			)
		}
		return domain.AnalysisRecord{}, err
	}

	e.logger.Info("analysis complete",
		"overall", rec.Overall,
		"categories", len(rec.Breakdown),
	)
	return rec, nil
}

func (e *Extractor) complete(ctx context.Context, kind, template, transcript string) (string, error) {
	messages := []anthropic.Message{
		{Role: anthropic.RoleUser, Content: fmt.Sprintf(template, transcript)},
	}

	e.logger.Info("requesting evaluation",
		"kind", kind,
		"transcript_len", len(transcript),
	)

	raw, err := e.llm.Complete(ctx, prompt.CoachSystem, messages, e.maxTokens)
	if err != nil {
		return "", domain.Collaborator("llm "+kind, err)
	}
	return raw, nil
}
