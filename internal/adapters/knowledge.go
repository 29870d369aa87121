package adapters

import (
	"context"
	"time"

	"github.com/ppiankov/nomos/internal/knowledge"
	"github.com/ppiankov/nomos/internal/model"
)

// KnowledgeSearcher is the part of the knowledge index the adapter needs
type KnowledgeSearcher interface {
	Search(text string, topK int) []knowledge.Hit
}

// KnowledgeAdapter serves evidence from the curated compliance calendar
type KnowledgeAdapter struct {
	index   KnowledgeSearcher
	topK    int
	timeout time.Duration
}

// NewKnowledgeAdapter creates a knowledge base adapter
func NewKnowledgeAdapter(index KnowledgeSearcher, cfg *model.Config) *KnowledgeAdapter {
	topK := cfg.Retrieval.TopK
	if topK <= 0 {
		topK = 5
	}

	return &KnowledgeAdapter{
		index:   index,
		topK:    topK,
		timeout: cfg.Retrieval.KBTimeout,
	}
}

// Kind returns the source kind
func (a *KnowledgeAdapter) Kind() model.SourceKind {
	return model.SourceKnowledgeBase
}

// Fetch searches the index and returns matching entries as evidence.
// The index is in-memory, so the lookup itself cannot stall; the
// deadline only matters when the caller's context is already gone.
func (a *KnowledgeAdapter) Fetch(ctx context.Context, q model.Query) ([]model.EvidenceItem, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, model.NewSourceTimeout(model.SourceKnowledgeBase, err)
	}

	hits := a.index.Search(q.Text, a.topK)
	items := make([]model.EvidenceItem, 0, len(hits))
	for _, h := range hits {
		items = append(items, entryToEvidence(h.Entry))
	}

	return items, nil
}

// entryToEvidence converts an index entry into an evidence item
func entryToEvidence(e knowledge.Entry) model.EvidenceItem {
	return model.EvidenceItem{
		Content:       e.Content,
		SourceName:    e.SourceName,
		DocumentType:  e.DocumentType,
		Authority:     model.ParseAuthorityTier(e.Authority),
		DatePublished: e.DatePublished,
		DateEffective: e.DateEffective,
		Confidence:    e.Confidence,
		Locator:       e.Locator,
		Origin:        model.SourceKnowledgeBase,
	}
}
