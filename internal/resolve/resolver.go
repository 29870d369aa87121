// Package resolve turns raw retrieval output into a ranked, deduplicated
// evidence set with an overall confidence and staleness verdict. Every
// adjustment it makes is reported as a diagnostic signal so the final
// number is explainable, not oracular.
package resolve

import (
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/nomos/internal/model"
)

// Resolver computes citation-ready evidence and confidence
type Resolver struct {
	thresholdDays int
	decayFactor   float64
	now           func() time.Time
}

// NewResolver creates a resolver with the configured currency window
func NewResolver(cfg *model.Config) *Resolver {
	thresholdDays := cfg.Currency.ThresholdDays
	if thresholdDays <= 0 {
		thresholdDays = 30
	}

	decay := cfg.Currency.DecayFactor
	if decay <= 0 || decay > 1 {
		decay = 0.6
	}

	return &Resolver{
		thresholdDays: thresholdDays,
		decayFactor:   decay,
		now:           time.Now,
	}
}

// Resolve deduplicates, ranks, and weighs the retrieved evidence
func (r *Resolver) Resolve(outcome *model.RetrievalOutcome, class model.QueryClass) model.Resolution {
	if outcome == nil {
		return model.Resolution{}
	}

	var signals []model.Signal

	items, dropped := r.dedupe(outcome.Items)
	if dropped > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalDeduplication,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Removed %d duplicate item(s) sharing a (source, locator) key", dropped),
			Data: map[string]interface{}{
				"dropped":   dropped,
				"surviving": len(items),
				"survivor":  "latest date_published, then highest confidence, then knowledge base origin",
			},
		})
	}

	rank(items)

	overall, staleCount, confidenceSignal := r.weigh(items)
	signals = append(signals, confidenceSignal)

	if outcome.UsedFallback {
		signals = append(signals, model.Signal{
			Type:        model.SignalFallbackPath,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Primary source %s produced nothing usable; served from %s", outcome.Primary, outcome.FallbackTo),
			Data: map[string]interface{}{
				"primary":     outcome.Primary.String(),
				"fallback_to": outcome.FallbackTo.String(),
				"failures":    len(outcome.Failures),
			},
		})
	}

	if len(items) > 0 {
		signals = append(signals, r.authoritySignal(items))
	}

	stale, warning := r.staleness(items, class, outcome)
	if stale {
		signals = append(signals, model.Signal{
			Type:        model.SignalStaleness,
			Severity:    model.SeverityWarning,
			Description: warning,
			Data: map[string]interface{}{
				"stale_items":    staleCount,
				"total_items":    len(items),
				"threshold_days": r.thresholdDays,
			},
		})
	}

	return model.Resolution{
		Evidence:          items,
		OverallConfidence: overall,
		Stale:             stale,
		StalenessWarning:  warning,
		Signals:           signals,
	}
}

// dedupe collapses items sharing a (source_name, locator) key. The
// survivor is the later publication, then the higher confidence, then
// the knowledge base copy. Returns the survivors in first-seen order
// and the number of dropped duplicates.
func (r *Resolver) dedupe(items []model.EvidenceItem) (model.MergedEvidenceSet, int) {
	type key struct {
		source  string
		locator string
	}

	seen := make(map[key]int, len(items))
	out := make(model.MergedEvidenceSet, 0, len(items))
	dropped := 0

	for _, item := range items {
		k := key{source: item.SourceName, locator: item.Locator}
		if i, ok := seen[k]; ok {
			dropped++
			if challengerWins(item, out[i]) {
				out[i] = item
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, item)
	}

	return out, dropped
}

// challengerWins decides which of two duplicates survives
func challengerWins(challenger, incumbent model.EvidenceItem) bool {
	if !challenger.DatePublished.Equal(incumbent.DatePublished) {
		return challenger.DatePublished.After(incumbent.DatePublished)
	}
	if challenger.Confidence != incumbent.Confidence {
		return challenger.Confidence > incumbent.Confidence
	}
	return challenger.Origin == model.SourceKnowledgeBase && incumbent.Origin != model.SourceKnowledgeBase
}

// rank orders evidence for citation: confidence desc, recency desc,
// then (source_name, locator) so equal items land deterministically.
func rank(items model.MergedEvidenceSet) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.DatePublished.Equal(b.DatePublished) {
			return a.DatePublished.After(b.DatePublished)
		}
		if a.SourceName != b.SourceName {
			return a.SourceName < b.SourceName
		}
		return a.Locator < b.Locator
	})
}

// weigh computes the recency-weighted overall confidence. Items past
// the currency threshold contribute confidence * decay_factor; a zero
// publication date counts as past the threshold.
func (r *Resolver) weigh(items model.MergedEvidenceSet) (float64, int, model.Signal) {
	if len(items) == 0 {
		return 0, 0, model.Signal{
			Type:        model.SignalConfidenceFormula,
			Severity:    model.SeverityCritical,
			Description: "No evidence to weigh",
			Data:        map[string]interface{}{"items": 0},
		}
	}

	threshold := time.Duration(r.thresholdDays) * 24 * time.Hour
	now := r.now()

	sum := 0.0
	staleCount := 0
	for _, item := range items {
		effective := item.Confidence
		if now.Sub(item.DatePublished) > threshold {
			effective *= r.decayFactor
			staleCount++
		}
		sum += effective
	}

	overall := sum / float64(len(items))

	severity := model.SeverityInfo
	if staleCount == len(items) {
		severity = model.SeverityWarning
	}

	return overall, staleCount, model.Signal{
		Type:        model.SignalConfidenceFormula,
		Severity:    severity,
		Description: fmt.Sprintf("Overall confidence %.2f from %d item(s), %d past the %d-day threshold", overall, len(items), staleCount, r.thresholdDays),
		Data: map[string]interface{}{
			"items":          len(items),
			"stale_items":    staleCount,
			"threshold_days": r.thresholdDays,
			"decay_factor":   r.decayFactor,
			"overall":        overall,
			"formula":        "mean(confidence * decay_factor if age > threshold else confidence)",
		},
	}
}

// authoritySignal summarizes the tier mix of the surviving evidence
func (r *Resolver) authoritySignal(items model.MergedEvidenceSet) model.Signal {
	primary, secondary, tertiary := 0, 0, 0
	for _, item := range items {
		switch item.Authority {
		case model.TierPrimary:
			primary++
		case model.TierSecondary:
			secondary++
		default:
			tertiary++
		}
	}

	severity := model.SeverityInfo
	if primary == 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalAuthorityMix,
		Severity:    severity,
		Description: fmt.Sprintf("Authority mix: %d primary, %d secondary, %d tertiary", primary, secondary, tertiary),
		Data: map[string]interface{}{
			"primary":   primary,
			"secondary": secondary,
			"tertiary":  tertiary,
		},
	}
}

// staleness decides whether the answer must carry a staleness warning.
// Two triggers: a recent-changes query served entirely from the
// knowledge base fallback, and an evidence set whose newest item is
// already past the currency threshold.
func (r *Resolver) staleness(items model.MergedEvidenceSet, class model.QueryClass, outcome *model.RetrievalOutcome) (bool, string) {
	if len(items) == 0 {
		return false, ""
	}

	newest := items[0].DatePublished
	for _, item := range items[1:] {
		if item.DatePublished.After(newest) {
			newest = item.DatePublished
		}
	}

	threshold := time.Duration(r.thresholdDays) * 24 * time.Hour
	age := r.now().Sub(newest)

	if class == model.ClassRecentChanges && outcome.FallbackOnly() && outcome.FallbackTo == model.SourceKnowledgeBase {
		return true, fmt.Sprintf(
			"Live search was unavailable; this answer relies on the compliance knowledge base last reviewed %s and may not reflect the most recent changes.",
			newest.Format("2006-01-02"))
	}

	if age > threshold {
		return true, fmt.Sprintf(
			"The most recent supporting source is %d days old; verify against current official guidance.",
			int(age.Hours()/24))
	}

	return false, ""
}
