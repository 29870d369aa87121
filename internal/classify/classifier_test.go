package classify

import (
	"testing"

	"github.com/ppiankov/nomos/internal/model"
)

func TestClassifier_Classify_DecisionTable(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		query     string
		wantClass model.QueryClass
		wantRule  string
	}{
		{
			name:      "established rate question",
			query:     "What is the current GST rate?",
			wantClass: model.ClassEstablishedLaw,
			wantRule:  RuleEstablishedOnly,
		},
		{
			name:      "recent changes question",
			query:     "Latest PAYE changes this month",
			wantClass: model.ClassRecentChanges,
			wantRule:  RuleRecentOnly,
		},
		{
			name:      "procedural question",
			query:     "How do I register for GST?",
			wantClass: model.ClassProcedural,
			wantRule:  RuleProceduralPrecedence,
		},
		{
			name:      "established plus recent goes hybrid",
			query:     "Has the GST registration threshold changed recently?",
			wantClass: model.ClassHybrid,
			wantRule:  RuleMixedSignals,
		},
		{
			name:      "no signals fails open to hybrid",
			query:     "Tell me about employing staff in a small business",
			wantClass: model.ClassHybrid,
			wantRule:  RuleFailOpen,
		},
		{
			name:      "threshold question",
			query:     "What is the GST registration threshold?",
			wantClass: model.ClassEstablishedLaw,
			wantRule:  RuleEstablishedOnly,
		},
		{
			name:      "deadline question",
			query:     "When is my provisional tax due?",
			wantClass: model.ClassEstablishedLaw,
			wantRule:  RuleEstablishedOnly,
		},
		{
			name:      "filing procedure",
			query:     "Which form do I use to file my IR3?",
			wantClass: model.ClassProcedural,
			wantRule:  RuleProceduralPrecedence,
		},
		{
			name:      "announcement question",
			query:     "Any updates announced for provisional tax?",
			wantClass: model.ClassRecentChanges,
			wantRule:  RuleRecentOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.Classify(model.Query{Text: tt.query})
			if d.Class != tt.wantClass {
				t.Errorf("Classify(%q) class = %s, want %s (reason: %s)",
					tt.query, d.Class, tt.wantClass, d.Reason)
			}
			if d.Rule != tt.wantRule {
				t.Errorf("Classify(%q) rule = %s, want %s", tt.query, d.Rule, tt.wantRule)
			}
		})
	}
}

func TestClassifier_Classify_ProceduralBeatsRecency(t *testing.T) {
	c := NewClassifier()

	// A procedural question about a recent process is still procedural.
	d := c.Classify(model.Query{Text: "How do I file the latest PAYE return?"})

	if d.Class != model.ClassProcedural {
		t.Errorf("Expected procedural precedence, got %s (rule %s)", d.Class, d.Rule)
	}
}

func TestClassifier_Classify_NewZealandDoesNotTriggerRecency(t *testing.T) {
	c := NewClassifier()

	// "New Zealand" must not match recency signals; single words match
	// whole tokens only.
	d := c.Classify(model.Query{Text: "What is the company tax rate in New Zealand?"})

	if d.Class != model.ClassEstablishedLaw {
		t.Errorf("Expected established_law, got %s (reason: %s)", d.Class, d.Reason)
	}
}

func TestClassifier_Classify_DeclaredIntent(t *testing.T) {
	c := NewClassifier()

	// A valid declared intent short-circuits the keyword rules.
	d := c.Classify(model.Query{Text: "How do I register for GST?", Intent: "recent_changes"})

	if d.Class != model.ClassRecentChanges {
		t.Errorf("Expected declared intent to win, got %s", d.Class)
	}
	if d.Rule != RuleDeclaredIntent {
		t.Errorf("Expected rule %s, got %s", RuleDeclaredIntent, d.Rule)
	}
}

func TestClassifier_Classify_InvalidIntentFallsThrough(t *testing.T) {
	c := NewClassifier()

	d := c.Classify(model.Query{Text: "What is the GST rate?", Intent: "nonsense"})

	if d.Class != model.ClassEstablishedLaw {
		t.Errorf("Expected keyword rules to apply for invalid intent, got %s", d.Class)
	}
}

func TestClassifier_Classify_Deterministic(t *testing.T) {
	c := NewClassifier()
	q := model.Query{Text: "Has the GST threshold changed recently?"}

	first := c.Classify(q)
	for i := 0; i < 50; i++ {
		d := c.Classify(q)
		if d != first {
			t.Fatalf("Classification not deterministic: %+v vs %+v", first, d)
		}
	}
}
