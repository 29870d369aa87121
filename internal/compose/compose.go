// Package compose assembles the terminal ComplianceAnswer from resolved
// evidence plus optional LLM-generated prose. Generation is best-effort:
// a missing, unavailable, or failing provider degrades the answer to
// citations only, it never discards the evidence.
package compose

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/nomos/internal/llm"
	"github.com/ppiankov/nomos/internal/model"
)

// Composer turns a resolution into a ComplianceAnswer
type Composer struct {
	provider llm.Provider
	config   llm.Config
}

// NewComposer creates a composer from LLM configuration. An empty provider
// string disables generation; answers are then citations-only.
func NewComposer(config llm.Config) (*Composer, error) {
	provider, err := llm.NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	return &Composer{
		provider: provider,
		config:   config,
	}, nil
}

// NewComposerWithProvider creates a composer around an existing provider
func NewComposerWithProvider(provider llm.Provider, config llm.Config) *Composer {
	return &Composer{
		provider: provider,
		config:   config,
	}
}

// IsEnabled returns true if prose generation is configured
func (c *Composer) IsEnabled() bool {
	return c.provider != nil
}

// ProviderName returns the name of the configured provider
func (c *Composer) ProviderName() string {
	if c.provider == nil {
		return ""
	}
	return c.provider.Name()
}

// Compose builds the answer for a question from its resolution.
//
// An empty evidence set is the one hard failure: ErrInsufficientEvidence.
// Everything else produces an answer. Generation failures return the
// degraded citations-only answer together with an error satisfying
// errors.Is(err, model.ErrCompositionFailed), so the caller can log the
// cause and still serve the answer.
func (c *Composer) Compose(ctx context.Context, question string, resolution model.Resolution) (model.ComplianceAnswer, error) {
	if len(resolution.Evidence) == 0 {
		return model.ComplianceAnswer{}, model.ErrInsufficientEvidence
	}

	if c.provider == nil {
		return c.degraded(resolution, "answer generation disabled: no LLM provider configured"), nil
	}

	if !c.provider.IsAvailable(ctx) {
		warning := fmt.Sprintf("LLM provider %s is not available (check API key and connectivity)", c.provider.Name())
		return c.degraded(resolution, warning), nil
	}

	resp, err := c.provider.Generate(ctx, llm.GenerateRequest{
		Question: question,
		Evidence: resolution.Evidence,
	})
	if err != nil {
		answer := c.degraded(resolution, fmt.Sprintf("answer generation failed: %v", err))
		answer.Generator = c.provider.Name()
		return answer, fmt.Errorf("%w: %v", model.ErrCompositionFailed, err)
	}

	return model.ComplianceAnswer{
		AnswerText:        resp.Answer,
		Citations:         narrowCitations(resolution.Evidence, resp.CitedIndexes),
		StalenessWarning:  resolution.StalenessWarning,
		OverallConfidence: resolution.OverallConfidence,
		Generator:         c.provider.Name() + "/" + resp.Model,
	}, nil
}

// degraded builds the citations-only answer shape: full ranked evidence,
// no prose, with the cause recorded in Warnings
func (c *Composer) degraded(resolution model.Resolution, warnings ...string) model.ComplianceAnswer {
	return model.ComplianceAnswer{
		Citations:         resolution.Evidence,
		StalenessWarning:  resolution.StalenessWarning,
		OverallConfidence: resolution.OverallConfidence,
		Degraded:          true,
		Warnings:          warnings,
	}
}

// narrowCitations keeps exactly the cited items, in rank order. Indexes
// are 1-based into the ranked evidence. No markers means the model did
// not cite selectively, so the full set stands.
func narrowCitations(evidence model.MergedEvidenceSet, indexes []int) []model.EvidenceItem {
	if len(indexes) == 0 {
		return evidence
	}

	sorted := append([]int(nil), indexes...)
	sort.Ints(sorted)

	cited := make([]model.EvidenceItem, 0, len(sorted))
	prev := 0
	for _, idx := range sorted {
		if idx == prev {
			continue
		}
		prev = idx
		if idx >= 1 && idx <= len(evidence) {
			cited = append(cited, evidence[idx-1])
		}
	}
	return cited
}
