package model

// Signal is a diagnostic record attached to a resolution. Data carries the
// concrete inputs and formula applied, so every score stays explainable.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalDeduplication     SignalType = "deduplication"      // Duplicate items dropped during merge
	SignalConfidenceFormula SignalType = "confidence_formula" // How overall confidence was computed
	SignalStaleness         SignalType = "staleness"          // Why the staleness flag was set
	SignalFallbackPath      SignalType = "fallback_path"      // Evidence came via adapter fallback
	SignalAuthorityMix      SignalType = "authority_mix"      // Authority tier distribution of evidence
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Resolution is the resolver's output: the merged evidence set plus the
// confidence/currency verdict derived from it.
type Resolution struct {
	Evidence          MergedEvidenceSet `json:"evidence"`
	OverallConfidence float64           `json:"overall_confidence"` // Recency-weighted, 0-1
	Stale             bool              `json:"stale"`
	StalenessWarning  string            `json:"staleness_warning,omitempty"`
	Signals           []Signal          `json:"signals,omitempty"`
}

// ComplianceAnswer is the terminal artifact for one query. Immutable once
// composed. Degraded answers keep their citations but carry no prose; the
// caller can detect every degraded shape from the flags alone, without
// parsing free text.
type ComplianceAnswer struct {
	AnswerText        string         `json:"answer_text,omitempty"`
	Citations         []EvidenceItem `json:"citations"` // Strict subset of the merged set, same rank order
	StalenessWarning  string         `json:"staleness_warning,omitempty"`
	OverallConfidence float64        `json:"overall_confidence"`
	Degraded          bool           `json:"degraded"`            // Prose missing or rejected
	Generator         string         `json:"generator,omitempty"` // provider/model that wrote the prose
	Warnings          []string       `json:"warnings,omitempty"`
}

// SourceRef is one citation in the caller-facing response shape.
type SourceRef struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
	Date    string `json:"date,omitempty"` // YYYY-MM-DD
}

// Response is the caller-facing wire shape. No other format is in scope.
type Response struct {
	Answer           string      `json:"answer"`
	Sources          []SourceRef `json:"sources"`
	StalenessWarning string      `json:"staleness_warning,omitempty"`
	Confidence       float64     `json:"confidence"`
}

// Response converts the answer into the caller-facing wire shape.
func (a ComplianceAnswer) Response() Response {
	sources := make([]SourceRef, 0, len(a.Citations))
	for _, c := range a.Citations {
		ref := SourceRef{
			Name:    c.SourceName,
			Locator: c.Locator,
		}
		if !c.DatePublished.IsZero() {
			ref.Date = c.DatePublished.Format("2006-01-02")
		}
		sources = append(sources, ref)
	}

	return Response{
		Answer:           a.AnswerText,
		Sources:          sources,
		StalenessWarning: a.StalenessWarning,
		Confidence:       a.OverallConfidence,
	}
}
