// Package classify maps a raw compliance question to a QueryClass through an
// explicit keyword decision table. Classification is a pure transformation:
// the same text and rule set always produce the same class, so routing
// behavior stays directly testable.
package classify

import (
	"strings"
	"unicode"

	"github.com/ppiankov/nomos/internal/model"
)

// Decision table, in order:
//  1. Declared intent, when it parses, short-circuits the rules.
//  2. Procedural signals win outright, independent of recency signals
//     (a procedural question about a recent process is still procedural).
//  3. Established + recent signals together -> HYBRID; under-sourcing is a
//     worse failure mode than the extra latency of consulting both sources.
//  4. Recent signals alone -> RECENT_CHANGES.
//  5. Established signals alone -> ESTABLISHED_LAW.
//  6. No rule matches -> HYBRID. Fail open toward more evidence, never none.
const (
	RuleDeclaredIntent       = "declared_intent"
	RuleProceduralPrecedence = "procedural_precedence"
	RuleMixedSignals         = "mixed_signals"
	RuleRecentOnly           = "recent_only"
	RuleEstablishedOnly      = "established_only"
	RuleFailOpen             = "fail_open"
)

// Phrases match as substrings of the lowered text; single words match whole
// tokens only. Compliance questions mention "New Zealand" constantly, so a
// bare substring match on words like "new" would misroute nearly everything.
var proceduralPhrases = []string{
	"how do i", "how to", "how can i", "how does one",
	"what form", "which form", "what forms",
	"where do i", "where can i",
	"steps to", "step by step", "process for", "procedure for",
	"register for", "apply for", "sign up", "set up",
	"file a", "file my", "fill out", "fill in",
	"lodge a", "lodge my", "submit a", "submit my",
}

var recentPhrases = []string{
	"this month", "this year", "this week",
	"new rule", "new rules", "new rate", "new rates",
	"just announced", "recently announced",
	"coming into force", "about to change",
	"what's new", "whats new",
}

var recentWords = []string{
	"latest", "recent", "recently",
	"change", "changed", "changes", "changing",
	"update", "updates", "updated",
	"announcement", "announced", "upcoming",
}

var establishedPhrases = []string{
	"what is the", "what are the",
	"who must", "who has to",
	"do i need", "do i have to",
	"when is", "when are",
	"how much is", "how much are",
}

var establishedWords = []string{
	"rate", "rates", "threshold", "thresholds",
	"rule", "rules", "law", "laws", "act",
	"requirement", "requirements",
	"obligation", "obligations",
	"definition", "penalty", "penalties",
	"deadline", "deadlines", "due",
	"exempt", "exemption",
}

// Classifier holds the rule tables. Construct once, reuse across requests;
// it carries no per-query state.
type Classifier struct {
	procedural  ruleSet
	recent      ruleSet
	established ruleSet
}

// NewClassifier creates a classifier with the built-in decision table.
func NewClassifier() *Classifier {
	return &Classifier{
		procedural:  newRuleSet(proceduralPhrases, nil),
		recent:      newRuleSet(recentPhrases, recentWords),
		established: newRuleSet(establishedPhrases, establishedWords),
	}
}

// Classify resolves a query to its class and records which table rule fired.
func (c *Classifier) Classify(q model.Query) model.Decision {
	if q.Intent != "" {
		if class, ok := model.ParseQueryClass(q.Intent); ok {
			return model.Decision{
				Class:  class,
				Rule:   RuleDeclaredIntent,
				Reason: "caller declared intent " + q.Intent,
			}
		}
	}

	lower := strings.ToLower(q.Text)
	tokens := tokenSet(lower)

	proceduralHits := c.procedural.matches(lower, tokens)
	recentHits := c.recent.matches(lower, tokens)
	establishedHits := c.established.matches(lower, tokens)

	switch {
	case len(proceduralHits) > 0:
		return model.Decision{
			Class:  model.ClassProcedural,
			Rule:   RuleProceduralPrecedence,
			Reason: "matched " + strings.Join(proceduralHits, ", "),
		}
	case len(establishedHits) > 0 && len(recentHits) > 0:
		return model.Decision{
			Class:  model.ClassHybrid,
			Rule:   RuleMixedSignals,
			Reason: "established " + strings.Join(establishedHits, ", ") + "; recent " + strings.Join(recentHits, ", "),
		}
	case len(recentHits) > 0:
		return model.Decision{
			Class:  model.ClassRecentChanges,
			Rule:   RuleRecentOnly,
			Reason: "matched " + strings.Join(recentHits, ", "),
		}
	case len(establishedHits) > 0:
		return model.Decision{
			Class:  model.ClassEstablishedLaw,
			Rule:   RuleEstablishedOnly,
			Reason: "matched " + strings.Join(establishedHits, ", "),
		}
	default:
		return model.Decision{
			Class:  model.ClassHybrid,
			Rule:   RuleFailOpen,
			Reason: "no rule matched",
		}
	}
}

// ruleSet pairs substring phrases with whole-token words.
type ruleSet struct {
	phrases []string
	words   map[string]bool
}

func newRuleSet(phrases, words []string) ruleSet {
	set := ruleSet{
		phrases: phrases,
		words:   make(map[string]bool, len(words)),
	}
	for _, w := range words {
		set.words[w] = true
	}
	return set
}

// matches returns every phrase and token hit, in table order, so the
// decision reason is itself deterministic.
func (r ruleSet) matches(lower string, tokens []string) []string {
	var hits []string
	for _, phrase := range r.phrases {
		if strings.Contains(lower, phrase) {
			hits = append(hits, "\""+phrase+"\"")
		}
	}
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if r.words[tok] && !seen[tok] {
			seen[tok] = true
			hits = append(hits, "\""+tok+"\"")
		}
	}
	return hits
}

// tokenSet splits lowered text into alphanumeric tokens.
func tokenSet(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
