// Package adapters wraps the two evidence sources behind a common
// Fetch contract. The set is closed: dispatch switches on the source
// kind rather than going through a registry, so adding a source means
// adding a field and a case here.
package adapters

import (
	"context"
	"fmt"

	"github.com/ppiankov/nomos/internal/model"
)

// Adapter is implemented by each evidence source. Fetch returns items
// in source rank order; failures come back as *model.SourceError so the
// orchestrator can distinguish timeouts from outages.
type Adapter interface {
	Kind() model.SourceKind
	Fetch(ctx context.Context, q model.Query) ([]model.EvidenceItem, error)
}

// Set holds exactly one adapter per source kind
type Set struct {
	Knowledge *KnowledgeAdapter
	Web       *WebAdapter
}

// NewSet creates the closed adapter set
func NewSet(knowledge *KnowledgeAdapter, web *WebAdapter) *Set {
	return &Set{Knowledge: knowledge, Web: web}
}

// ByKind returns the adapter for a source kind
func (s *Set) ByKind(kind model.SourceKind) (Adapter, error) {
	switch kind {
	case model.SourceKnowledgeBase:
		return s.Knowledge, nil
	case model.SourceWebSearch:
		return s.Web, nil
	default:
		return nil, fmt.Errorf("no adapter for source kind %q", kind)
	}
}
