package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/nomos/internal/cache"
	"github.com/ppiankov/nomos/internal/model"
)

// WebSearcher is the part of the search client the adapter needs
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]model.EvidenceItem, error)
}

// WebAdapter serves evidence from focused web search
type WebAdapter struct {
	client     WebSearcher
	timeout    time.Duration
	cache      *cache.EvidenceCache // nil disables caching
	maxResults int
}

// NewWebAdapter creates a web search adapter
func NewWebAdapter(client WebSearcher, evidenceCache *cache.EvidenceCache, cfg *model.Config) *WebAdapter {
	return &WebAdapter{
		client:     client,
		timeout:    cfg.Retrieval.WebTimeout,
		cache:      evidenceCache,
		maxResults: cfg.Search.MaxResults,
	}
}

// Kind returns the source kind
func (a *WebAdapter) Kind() model.SourceKind {
	return model.SourceWebSearch
}

// Fetch runs a focused search under the adapter's own deadline. Results
// are cached per query; a cached hit skips the network entirely, keeping
// repeated questions inside the deadline even when the endpoint is slow.
func (a *WebAdapter) Fetch(ctx context.Context, q model.Query) ([]model.EvidenceItem, error) {
	if a.cache != nil {
		if items, found := a.cache.Get(model.SourceWebSearch, q.Text, a.maxResults); found {
			return items, nil
		}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	items, err := a.client.Search(ctx, q.Text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, model.NewSourceTimeout(model.SourceWebSearch, err)
		}
		return nil, model.NewSourceUnavailable(model.SourceWebSearch, err)
	}

	if a.cache != nil && len(items) > 0 {
		// Best effort: a failed cache write never fails the fetch.
		_ = a.cache.Set(model.SourceWebSearch, q.Text, a.maxResults, items)
	}

	return items, nil
}
