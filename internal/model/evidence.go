package model

import "time"

// SourceKind identifies which retrieval backend produced an evidence item.
// The adapter set is closed: routing dispatches over these variants, never
// over runtime discovery.
type SourceKind int

const (
	SourceUnknown       SourceKind = 0
	SourceKnowledgeBase SourceKind = 1 // Curated compliance knowledge base
	SourceWebSearch     SourceKind = 2 // Live web search
)

func (k SourceKind) String() string {
	switch k {
	case SourceKnowledgeBase:
		return "knowledge_base"
	case SourceWebSearch:
		return "web_search"
	default:
		return "unknown"
	}
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government sources, legislation, official guidance
	TierSecondary AuthorityTier = 2 // Professional bodies, major accounting firms, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, forums, general commercial sites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// ParseAuthorityTier maps a tier name to an AuthorityTier.
// Unrecognized names classify as TierUnknown.
func ParseAuthorityTier(s string) AuthorityTier {
	switch s {
	case "primary":
		return TierPrimary
	case "secondary":
		return TierSecondary
	case "tertiary":
		return TierTertiary
	default:
		return TierUnknown
	}
}

// EvidenceItem is one retrieved fact or snippet with source metadata,
// the atomic unit merged across adapters. Immutable once produced.
type EvidenceItem struct {
	Content       string        `json:"content"`                  // Snippet text
	SourceName    string        `json:"source_name"`              // e.g. "Inland Revenue", "ird.govt.nz"
	DocumentType  string        `json:"document_type,omitempty"`  // e.g. "tax_rule", "web_page"
	Authority     AuthorityTier `json:"authority,omitempty"`      // Source authority classification
	DatePublished time.Time     `json:"date_published"`           // KB: ingestion date; web: fetch time
	DateEffective time.Time     `json:"date_effective,omitempty"` // When the rule takes effect, if known
	Confidence    float64       `json:"confidence"`               // Declared confidence, 0-1
	Locator       string        `json:"locator"`                  // Section ID, page, or URL
	Origin        SourceKind    `json:"origin"`                   // Which adapter produced it
}

// MergedEvidenceSet is a deduplicated, ranked sequence of evidence items.
// Invariants: no two items share a (SourceName, Locator) pair; ordering is
// by descending (Confidence, DatePublished) with a lexicographic tie-break
// so the ranking is fully deterministic.
type MergedEvidenceSet []EvidenceItem
