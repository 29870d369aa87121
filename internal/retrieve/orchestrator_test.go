package retrieve

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/nomos/internal/adapters"
	"github.com/ppiankov/nomos/internal/knowledge"
	"github.com/ppiankov/nomos/internal/model"
)

type fakeIndex struct {
	hits  []knowledge.Hit
	calls atomic.Int32
}

func (f *fakeIndex) Search(text string, topK int) []knowledge.Hit {
	f.calls.Add(1)
	return f.hits
}

type fakeSearcher struct {
	items []model.EvidenceItem
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]model.EvidenceItem, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.items, f.err
}

func gstHit() knowledge.Hit {
	return knowledge.Hit{
		Entry: knowledge.Entry{
			Topic:         "GST rate",
			Content:       "GST in New Zealand is 15%.",
			SourceName:    "Inland Revenue",
			Locator:       "kb:gst/rate",
			Authority:     "primary",
			DatePublished: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Confidence:    0.95,
		},
		Score: 3.0,
	}
}

func webItem(locator string) model.EvidenceItem {
	return model.EvidenceItem{
		Content:       "PAYE filing update announced",
		SourceName:    "ird.govt.nz",
		Authority:     model.TierPrimary,
		DatePublished: time.Now().UTC(),
		Confidence:    0.8,
		Locator:       locator,
		Origin:        model.SourceWebSearch,
	}
}

func newTestOrchestrator(index *fakeIndex, searcher *fakeSearcher, mutate func(*model.Config)) *Orchestrator {
	cfg := model.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	set := adapters.NewSet(
		adapters.NewKnowledgeAdapter(index, &cfg),
		adapters.NewWebAdapter(searcher, nil, &cfg),
	)
	return NewOrchestrator(set)
}

func wantTransitions(t *testing.T, outcome *model.RetrievalOutcome, want ...model.RetrievalState) {
	t.Helper()
	if len(outcome.Transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", outcome.Transitions, want)
	}
	for i := range want {
		if outcome.Transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", outcome.Transitions, want)
		}
	}
}

func TestOrchestrator_Retrieve_EstablishedLawUsesKnowledgeBase(t *testing.T) {
	index := &fakeIndex{hits: []knowledge.Hit{gstHit()}}
	searcher := &fakeSearcher{items: []model.EvidenceItem{webItem("https://www.ird.govt.nz/x")}}
	orch := newTestOrchestrator(index, searcher, nil)

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "What is the current GST rate?"}, model.ClassEstablishedLaw)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if outcome.Primary != model.SourceKnowledgeBase {
		t.Errorf("Primary = %v, want knowledge_base", outcome.Primary)
	}
	if outcome.UsedFallback {
		t.Error("UsedFallback = true, want false")
	}
	if len(outcome.Items) != 1 || outcome.Items[0].Origin != model.SourceKnowledgeBase {
		t.Errorf("Items = %+v, want one knowledge base item", outcome.Items)
	}
	if searcher.calls.Load() != 0 {
		t.Errorf("web searcher called %d times, want 0", searcher.calls.Load())
	}
	wantTransitions(t, outcome,
		model.StateClassified, model.StateDispatched, model.StatePartialResults, model.StateMerged)
}

func TestOrchestrator_Retrieve_EmptyKnowledgeBaseFallsBackToWeb(t *testing.T) {
	index := &fakeIndex{} // no hits
	searcher := &fakeSearcher{items: []model.EvidenceItem{webItem("https://www.ird.govt.nz/y")}}
	orch := newTestOrchestrator(index, searcher, nil)

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "what are the FBT rules"}, model.ClassEstablishedLaw)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if !outcome.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
	if outcome.FallbackTo != model.SourceWebSearch {
		t.Errorf("FallbackTo = %v, want web_search", outcome.FallbackTo)
	}
	if !outcome.FallbackOnly() {
		t.Error("FallbackOnly() = false, want true")
	}
	if len(outcome.Failures) != 1 {
		t.Fatalf("Failures = %+v, want one entry", outcome.Failures)
	}
	if outcome.Failures[0].Source != model.SourceKnowledgeBase || outcome.Failures[0].Message != "empty result set" {
		t.Errorf("failure = %+v, want empty-result knowledge_base entry", outcome.Failures[0])
	}
}

func TestOrchestrator_Retrieve_RecentChangesPrefersWeb(t *testing.T) {
	index := &fakeIndex{hits: []knowledge.Hit{gstHit()}}
	searcher := &fakeSearcher{items: []model.EvidenceItem{webItem("https://www.ird.govt.nz/paye-news")}}
	orch := newTestOrchestrator(index, searcher, nil)

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "latest PAYE changes"}, model.ClassRecentChanges)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if outcome.Primary != model.SourceWebSearch {
		t.Errorf("Primary = %v, want web_search", outcome.Primary)
	}
	if outcome.UsedFallback {
		t.Error("UsedFallback = true, want false")
	}
	if index.calls.Load() != 0 {
		t.Errorf("knowledge index called %d times, want 0", index.calls.Load())
	}
	for _, item := range outcome.Items {
		if item.Origin != model.SourceWebSearch {
			t.Errorf("item %s origin = %v, want web_search", item.Locator, item.Origin)
		}
	}
}

func TestOrchestrator_Retrieve_WebTimeoutFallsBackToKnowledgeBase(t *testing.T) {
	index := &fakeIndex{hits: []knowledge.Hit{gstHit()}}
	searcher := &fakeSearcher{delay: 200 * time.Millisecond}
	orch := newTestOrchestrator(index, searcher, func(cfg *model.Config) {
		cfg.Retrieval.WebTimeout = 10 * time.Millisecond
	})

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "PAYE changes this month"}, model.ClassRecentChanges)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if !outcome.UsedFallback || outcome.FallbackTo != model.SourceKnowledgeBase {
		t.Errorf("fallback = (%v, %v), want knowledge_base fallback", outcome.UsedFallback, outcome.FallbackTo)
	}
	if !outcome.FallbackOnly() {
		t.Error("FallbackOnly() = false, want true")
	}
	if len(outcome.Failures) != 1 {
		t.Fatalf("Failures = %+v, want one entry", outcome.Failures)
	}
	if !outcome.Failures[0].Timeout {
		t.Errorf("failure = %+v, want timeout flagged", outcome.Failures[0])
	}
	wantTransitions(t, outcome,
		model.StateClassified, model.StateDispatched, model.StatePartialResults, model.StateMerged)
}

func TestOrchestrator_Retrieve_BothFailReturnsNoEvidence(t *testing.T) {
	index := &fakeIndex{} // empty
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	orch := newTestOrchestrator(index, searcher, nil)

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "latest updates"}, model.ClassRecentChanges)
	if !errors.Is(err, model.ErrNoEvidenceAvailable) {
		t.Fatalf("err = %v, want ErrNoEvidenceAvailable", err)
	}
	if outcome == nil {
		t.Fatal("outcome = nil, want populated record")
	}
	if outcome.State != model.StateAllFailed {
		t.Errorf("State = %v, want all_failed", outcome.State)
	}
	if len(outcome.Failures) != 2 {
		t.Errorf("Failures = %+v, want two entries", outcome.Failures)
	}
	wantTransitions(t, outcome,
		model.StateClassified, model.StateDispatched, model.StateAllFailed)
}

func TestOrchestrator_Retrieve_HybridMergesInFixedOrder(t *testing.T) {
	index := &fakeIndex{hits: []knowledge.Hit{gstHit()}}
	// The web source answers fast; merged order must still put the
	// knowledge base first.
	searcher := &fakeSearcher{items: []model.EvidenceItem{webItem("https://www.ird.govt.nz/z")}}
	orch := newTestOrchestrator(index, searcher, nil)

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "GST rate and any recent changes"}, model.ClassHybrid)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if len(outcome.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(outcome.Items))
	}
	if outcome.Items[0].Origin != model.SourceKnowledgeBase {
		t.Errorf("first item origin = %v, want knowledge_base", outcome.Items[0].Origin)
	}
	if outcome.Items[1].Origin != model.SourceWebSearch {
		t.Errorf("second item origin = %v, want web_search", outcome.Items[1].Origin)
	}
	if outcome.UsedFallback {
		t.Error("UsedFallback = true, want false for hybrid dispatch")
	}
	if outcome.State != model.StateMerged {
		t.Errorf("State = %v, want merged", outcome.State)
	}
}

func TestOrchestrator_Retrieve_HybridSurvivesOneFailure(t *testing.T) {
	index := &fakeIndex{hits: []knowledge.Hit{gstHit()}}
	searcher := &fakeSearcher{err: errors.New("dns failure")}
	orch := newTestOrchestrator(index, searcher, nil)

	outcome, err := orch.Retrieve(context.Background(), model.Query{Text: "GST rules and updates"}, model.ClassHybrid)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if len(outcome.Items) != 1 || outcome.Items[0].Origin != model.SourceKnowledgeBase {
		t.Errorf("Items = %+v, want knowledge base item only", outcome.Items)
	}
	if len(outcome.Failures) != 1 || outcome.Failures[0].Source != model.SourceWebSearch {
		t.Errorf("Failures = %+v, want one web_search entry", outcome.Failures)
	}
}

func TestOrchestrator_Retrieve_HybridBothEmpty(t *testing.T) {
	orch := newTestOrchestrator(&fakeIndex{}, &fakeSearcher{}, nil)

	_, err := orch.Retrieve(context.Background(), model.Query{Text: "nothing matches this"}, model.ClassHybrid)
	if !errors.Is(err, model.ErrNoEvidenceAvailable) {
		t.Fatalf("err = %v, want ErrNoEvidenceAvailable", err)
	}
}
