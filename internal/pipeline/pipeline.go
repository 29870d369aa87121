package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/nomos/internal/adapters"
	"github.com/ppiankov/nomos/internal/cache"
	"github.com/ppiankov/nomos/internal/classify"
	"github.com/ppiankov/nomos/internal/compose"
	"github.com/ppiankov/nomos/internal/knowledge"
	"github.com/ppiankov/nomos/internal/llm"
	"github.com/ppiankov/nomos/internal/model"
	"github.com/ppiankov/nomos/internal/resolve"
	"github.com/ppiankov/nomos/internal/retrieve"
	"github.com/ppiankov/nomos/internal/websearch"
)

// Pipeline orchestrates the complete ask flow
type Pipeline struct {
	classifier   *classify.Classifier
	orchestrator *retrieve.Orchestrator
	resolver     *resolve.Resolver
	composer     *compose.Composer
	renderer     *Renderer
	config       *model.Config
}

// New wires the full ask flow from a single configuration value
func New(cfg *model.Config) (*Pipeline, error) {
	index := knowledge.NewIndex()
	if cfg.Knowledge.ExtraPath != "" {
		if err := index.LoadYAML(cfg.Knowledge.ExtraPath); err != nil {
			return nil, fmt.Errorf("load knowledge file: %w", err)
		}
	}

	var evidenceCache *cache.EvidenceCache
	if cfg.Cache.Enabled {
		var backend cache.Cache
		if cfg.Cache.Dir != "" {
			backend = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			backend = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
		evidenceCache = cache.NewEvidenceCache(backend, cfg.Cache.TTL)
	}

	kb := adapters.NewKnowledgeAdapter(index, cfg)
	web := adapters.NewWebAdapter(websearch.NewClient(cfg), evidenceCache, cfg)
	set := adapters.NewSet(kb, web)

	// Create the answer composer if an LLM provider is configured
	llmConfig := llm.ConfigFromModel(cfg.LLM)
	composer, err := compose.NewComposer(llmConfig)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		composer = compose.NewComposerWithProvider(nil, llmConfig)
	}

	return &Pipeline{
		classifier:   classify.NewClassifier(),
		orchestrator: retrieve.NewOrchestrator(set),
		resolver:     resolve.NewResolver(cfg),
		composer:     composer,
		renderer:     NewRenderer(cfg.Output.IncludeFooter),
		config:       cfg,
	}, nil
}

// AskResult contains the complete result of one question, including the
// intermediate artifacts each stage produced
type AskResult struct {
	Query      model.Query             `json:"query"`
	Decision   model.Decision          `json:"decision"`
	Outcome    *model.RetrievalOutcome `json:"outcome"`
	Resolution model.Resolution        `json:"resolution"`
	Answer     model.ComplianceAnswer  `json:"answer"`
	Response   model.Response          `json:"response"`
	Elapsed    time.Duration           `json:"elapsed"`
}

// Answer answers a single compliance question. intent optionally declares
// the query class and bypasses classification when it names a known class.
func (p *Pipeline) Answer(ctx context.Context, question, intent string) (*AskResult, error) {
	start := time.Now()

	if p.config.Retrieval.OverallDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Retrieval.OverallDeadline)
		defer cancel()
	}

	query := model.Query{Text: question, Intent: intent}

	// 1. Classify the query
	decision := p.classifier.Classify(query)

	// 2. Retrieve evidence per the routing plan
	outcome, err := p.orchestrator.Retrieve(ctx, query, decision.Class)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	// 3. Merge evidence and derive confidence
	resolution := p.resolver.Resolve(outcome, decision.Class)

	// 4. Compose the answer. Composition failures degrade to citations
	// only; the evidence is never discarded.
	answer, err := p.composer.Compose(ctx, question, resolution)
	if err != nil {
		if !errors.Is(err, model.ErrCompositionFailed) {
			return nil, fmt.Errorf("compose: %w", err)
		}
		fmt.Printf("Warning: answer generation failed: %v\n", err)
	}

	return &AskResult{
		Query:      query,
		Decision:   decision,
		Outcome:    outcome,
		Resolution: resolution,
		Answer:     answer,
		Response:   answer.Response(),
		Elapsed:    time.Since(start),
	}, nil
}

// Ask answers one question with no declared intent. It is the single-question
// form used by the batch worker.
func (p *Pipeline) Ask(ctx context.Context, question string) (model.Response, error) {
	result, err := p.Answer(ctx, question, "")
	if err != nil {
		return model.Response{}, err
	}
	return result.Response, nil
}

// RenderResult renders the result to the specified outputs
func (p *Pipeline) RenderResult(result *AskResult, jsonPath string, mdPath string, verbose bool) error {
	// Render JSON
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	// Render Markdown
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Print summary to stdout
	p.renderer.RenderSummary(result)

	return nil
}
