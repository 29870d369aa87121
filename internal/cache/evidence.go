package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ppiankov/nomos/internal/model"
)

// EvidenceCache stores retrieved evidence keyed by source, query and
// result count, so repeated questions skip the backend round trip.
// Cached items keep their original DatePublished, which means staleness
// decisions stay correct even when served from cache.
type EvidenceCache struct {
	backend Cache
	ttl     time.Duration
}

// NewEvidenceCache wraps a byte-level cache with evidence serialization
func NewEvidenceCache(backend Cache, ttl time.Duration) *EvidenceCache {
	return &EvidenceCache{
		backend: backend,
		ttl:     ttl,
	}
}

// Get returns the cached evidence for a query, if present and fresh
func (c *EvidenceCache) Get(source model.SourceKind, query string, topK int) ([]model.EvidenceItem, bool) {
	data, found := c.backend.Get(c.key(source, query, topK))
	if !found {
		return nil, false
	}

	var items []model.EvidenceItem
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false
	}

	return items, true
}

// Set stores the evidence for a query
func (c *EvidenceCache) Set(source model.SourceKind, query string, topK int, items []model.EvidenceItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}

	return c.backend.Set(c.key(source, query, topK), data, c.ttl)
}

func (c *EvidenceCache) key(source model.SourceKind, query string, topK int) string {
	return Key(source.String(), query, strconv.Itoa(topK))
}
