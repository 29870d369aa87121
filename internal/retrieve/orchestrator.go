// Package retrieve routes classified queries to evidence sources and
// drives the per-query retrieval state machine.
//
// Established-law and procedural queries hit the knowledge base first
// with web search as fallback. Recent-changes queries reverse that
// order. Hybrid queries dispatch both adapters concurrently under
// independent deadlines. A request only fails outright when every
// dispatched adapter failed or came back empty.
package retrieve

import (
	"context"
	"errors"
	"sync"

	"github.com/ppiankov/nomos/internal/adapters"
	"github.com/ppiankov/nomos/internal/model"
)

// Orchestrator dispatches retrieval across the adapter set
type Orchestrator struct {
	set *adapters.Set
}

// NewOrchestrator creates a retrieval orchestrator
func NewOrchestrator(set *adapters.Set) *Orchestrator {
	return &Orchestrator{set: set}
}

// plan maps a query class to a routing plan. Hybrid and unclassified
// queries dispatch both sources concurrently.
func plan(class model.QueryClass) (primary, fallback model.SourceKind, concurrent bool) {
	switch class {
	case model.ClassEstablishedLaw, model.ClassProcedural:
		return model.SourceKnowledgeBase, model.SourceWebSearch, false
	case model.ClassRecentChanges:
		return model.SourceWebSearch, model.SourceKnowledgeBase, false
	default:
		return model.SourceUnknown, model.SourceUnknown, true
	}
}

// Retrieve executes the routing plan for the classified query. The
// returned outcome is always non-nil; the error is ErrNoEvidenceAvailable
// when no adapter produced any items.
func (o *Orchestrator) Retrieve(ctx context.Context, q model.Query, class model.QueryClass) (*model.RetrievalOutcome, error) {
	outcome := &model.RetrievalOutcome{
		State:       model.StateClassified,
		Transitions: []model.RetrievalState{model.StateClassified},
	}

	primary, fallback, concurrent := plan(class)
	if concurrent {
		return o.retrieveConcurrent(ctx, q, outcome)
	}
	return o.retrieveSequential(ctx, q, outcome, primary, fallback)
}

// retrieveSequential tries the primary adapter and falls back to the
// secondary when the primary fails or returns nothing.
func (o *Orchestrator) retrieveSequential(ctx context.Context, q model.Query, outcome *model.RetrievalOutcome, primary, fallback model.SourceKind) (*model.RetrievalOutcome, error) {
	outcome.Primary = primary
	o.transition(outcome, model.StateDispatched)

	items, err := o.fetch(ctx, primary, q)
	if err == nil && len(items) > 0 {
		o.transition(outcome, model.StatePartialResults)
		outcome.Items = items
		o.transition(outcome, model.StateMerged)
		return outcome, nil
	}

	// Primary produced nothing usable; record why and try the fallback.
	outcome.Failures = append(outcome.Failures, failureFor(primary, err))

	fbItems, fbErr := o.fetch(ctx, fallback, q)
	if fbErr != nil || len(fbItems) == 0 {
		outcome.Failures = append(outcome.Failures, failureFor(fallback, fbErr))
		o.transition(outcome, model.StateAllFailed)
		return outcome, model.ErrNoEvidenceAvailable
	}

	outcome.UsedFallback = true
	outcome.FallbackTo = fallback
	o.transition(outcome, model.StatePartialResults)
	outcome.Items = fbItems
	o.transition(outcome, model.StateMerged)
	return outcome, nil
}

// retrieveConcurrent dispatches both adapters at once. Each runs under
// its own deadline; results join in fixed source order (knowledge base
// before web) so arrival order never leaks into the merged set.
func (o *Orchestrator) retrieveConcurrent(ctx context.Context, q model.Query, outcome *model.RetrievalOutcome) (*model.RetrievalOutcome, error) {
	o.transition(outcome, model.StateDispatched)

	type sourceResult struct {
		kind  model.SourceKind
		items []model.EvidenceItem
		err   error
	}

	kinds := []model.SourceKind{model.SourceKnowledgeBase, model.SourceWebSearch}
	results := make(chan sourceResult, len(kinds))

	var wg sync.WaitGroup
	for _, kind := range kinds {
		wg.Add(1)
		go func(kind model.SourceKind) {
			defer wg.Done()
			items, err := o.fetch(ctx, kind, q)
			results <- sourceResult{kind: kind, items: items, err: err}
		}(kind)
	}
	wg.Wait()
	close(results)

	byKind := make(map[model.SourceKind]sourceResult, len(kinds))
	for r := range results {
		byKind[r.kind] = r
	}

	var merged []model.EvidenceItem
	for _, kind := range kinds {
		r := byKind[kind]
		if r.err != nil || len(r.items) == 0 {
			outcome.Failures = append(outcome.Failures, failureFor(kind, r.err))
			continue
		}
		merged = append(merged, r.items...)
	}

	if len(merged) == 0 {
		o.transition(outcome, model.StateAllFailed)
		return outcome, model.ErrNoEvidenceAvailable
	}

	o.transition(outcome, model.StatePartialResults)
	outcome.Items = merged
	o.transition(outcome, model.StateMerged)
	return outcome, nil
}

// fetch dispatches to one adapter and normalizes every failure into a
// SourceError so downstream code can rely on the taxonomy.
func (o *Orchestrator) fetch(ctx context.Context, kind model.SourceKind, q model.Query) ([]model.EvidenceItem, error) {
	adapter, err := o.set.ByKind(kind)
	if err != nil {
		return nil, model.NewSourceUnavailable(kind, err)
	}

	items, err := adapter.Fetch(ctx, q)
	if err != nil {
		var se *model.SourceError
		if !errors.As(err, &se) {
			err = model.NewSourceUnavailable(kind, err)
		}
		return nil, err
	}
	return items, nil
}

// transition advances the state machine and records the step
func (o *Orchestrator) transition(outcome *model.RetrievalOutcome, state model.RetrievalState) {
	outcome.State = state
	outcome.Transitions = append(outcome.Transitions, state)
}

// failureFor builds the failure record for an adapter that produced no
// usable items. A nil error means the adapter succeeded with an empty
// result set.
func failureFor(kind model.SourceKind, err error) model.AdapterFailure {
	if err == nil {
		return model.AdapterFailure{Source: kind, Message: "empty result set"}
	}
	return model.AdapterFailure{
		Source:  kind,
		Timeout: model.IsSourceTimeout(err),
		Message: err.Error(),
	}
}
