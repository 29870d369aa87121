// Package knowledge implements the curated compliance knowledge base: a
// small in-memory index of New Zealand business compliance entries with
// deterministic keyword search. Ingestion and embedding pipelines are out of
// scope; the index only answers ranked lookups.
package knowledge

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Entry is one curated compliance fact. DatePublished records when the
// entry was last reviewed; knowledge-base content is assumed valid as of
// that date (the adapter's staleness policy).
type Entry struct {
	Topic         string    `yaml:"topic" json:"topic"`
	Content       string    `yaml:"content" json:"content"`
	DocumentType  string    `yaml:"document_type" json:"document_type"`
	SourceName    string    `yaml:"source_name" json:"source_name"`
	Locator       string    `yaml:"locator" json:"locator"`
	Authority     string    `yaml:"authority" json:"authority"` // primary, secondary, tertiary
	DatePublished time.Time `yaml:"date_published" json:"date_published"`
	DateEffective time.Time `yaml:"date_effective,omitempty" json:"date_effective,omitempty"`
	Keywords      []string  `yaml:"keywords" json:"keywords"`
	Confidence    float64   `yaml:"confidence" json:"confidence"`
}

// Hit is one search result with its match score.
type Hit struct {
	Entry Entry
	Score float64
}

// Index holds the searchable entry set. Construct once and share; Search
// does not mutate state.
type Index struct {
	entries []Entry
}

// NewIndex creates an index preloaded with the built-in compliance calendar.
func NewIndex() *Index {
	return &Index{entries: builtinEntries()}
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// LoadYAML merges operator-supplied entries from a YAML file. An empty path
// is a no-op; a malformed file or an entry missing its identity fields is
// an error.
func (ix *Index) LoadYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read knowledge file: %w", err)
	}

	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse knowledge file: %w", err)
	}

	for i, e := range doc.Entries {
		if e.Topic == "" || e.Content == "" || e.Locator == "" {
			return fmt.Errorf("knowledge entry %d: topic, content, and locator are required", i)
		}
		ix.entries = append(ix.entries, normalize(e))
	}

	return nil
}

// Search returns up to topK entries ranked by keyword overlap with the
// query. Ranking is deterministic: score descending, then locator ascending.
// A query that matches nothing returns an empty slice, not an error.
func (ix *Index) Search(text string, topK int) []Hit {
	if topK <= 0 {
		topK = 5
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var hits []Hit
	for _, entry := range ix.entries {
		score := matchScore(entry, tokens)
		if score > 0 {
			hits = append(hits, Hit{Entry: entry, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Entry.Locator < hits[j].Entry.Locator
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// matchScore counts distinct keyword hits, with topic-word hits counting
// extra. Zero means the entry is unrelated to the query.
func matchScore(entry Entry, queryTokens []string) float64 {
	keywordSet := make(map[string]bool, len(entry.Keywords))
	for _, k := range entry.Keywords {
		keywordSet[strings.ToLower(k)] = true
	}
	topicSet := make(map[string]bool)
	for _, t := range tokenize(entry.Topic) {
		topicSet[t] = true
	}

	score := 0.0
	seen := make(map[string]bool)
	for _, tok := range queryTokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if keywordSet[tok] {
			score += 1.0
		}
		if topicSet[tok] {
			score += 0.5
		}
	}
	return score
}

func normalize(e Entry) Entry {
	for i, k := range e.Keywords {
		e.Keywords[i] = strings.ToLower(k)
	}
	if e.Confidence <= 0 {
		e.Confidence = 0.8
	}
	if e.Authority == "" {
		e.Authority = "primary"
	}
	return e
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
