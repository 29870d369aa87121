package eval

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/nomos/internal/classify"
	"github.com/ppiankov/nomos/internal/model"
	"github.com/ppiankov/nomos/internal/pipeline"
)

// mockAnswerer implements Answerer with canned results per question
type mockAnswerer struct {
	results map[string]*pipeline.AskResult
	err     error
}

func (m *mockAnswerer) Answer(ctx context.Context, question, intent string) (*pipeline.AskResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	res, ok := m.results[question]
	if !ok {
		return nil, errors.New("unexpected question: " + question)
	}
	return res, nil
}

func askResult(class model.QueryClass, answerText, evidenceContent string, confidence float64, elapsed time.Duration) *pipeline.AskResult {
	item := model.EvidenceItem{
		Content:       evidenceContent,
		SourceName:    "Inland Revenue",
		Locator:       "kb:test",
		Authority:     model.TierPrimary,
		DatePublished: time.Now(),
		Confidence:    confidence,
		Origin:        model.SourceKnowledgeBase,
	}

	answer := model.ComplianceAnswer{
		AnswerText:        answerText,
		Citations:         []model.EvidenceItem{item},
		OverallConfidence: confidence,
		Degraded:          answerText == "",
	}

	return &pipeline.AskResult{
		Decision:   model.Decision{Class: class},
		Resolution: model.Resolution{Evidence: model.MergedEvidenceSet{item}, OverallConfidence: confidence},
		Answer:     answer,
		Response:   answer.Response(),
		Elapsed:    elapsed,
	}
}

func TestDefaultQuestions_CoverAllCategories(t *testing.T) {
	want := []string{"gst", "paye", "provisional-tax", "registration", "deadlines"}

	seen := make(map[string]bool)
	ids := make(map[string]bool)
	for _, q := range DefaultQuestions() {
		seen[q.Category] = true
		if ids[q.ID] {
			t.Errorf("duplicate question ID %q", q.ID)
		}
		ids[q.ID] = true
		if q.Text == "" || q.ExpectClass == "" {
			t.Errorf("question %q missing text or expected class", q.ID)
		}
	}

	for _, category := range want {
		if !seen[category] {
			t.Errorf("no questions in category %q", category)
		}
	}
}

// The golden set encodes what the decision table should do; this keeps the
// two from drifting apart.
func TestDefaultQuestions_AgreeWithClassifier(t *testing.T) {
	classifier := classify.NewClassifier()

	for _, q := range DefaultQuestions() {
		decision := classifier.Classify(model.Query{Text: q.Text})
		if decision.Class.String() != q.ExpectClass {
			t.Errorf("%s: expected class %s, classifier says %s (%s)",
				q.ID, q.ExpectClass, decision.Class, decision.Reason)
		}
	}
}

func TestLoadQuestions_EmptyPathReturnsBuiltin(t *testing.T) {
	questions, err := LoadQuestions("")
	if err != nil {
		t.Fatalf("LoadQuestions failed: %v", err)
	}
	if len(questions) != len(DefaultQuestions()) {
		t.Errorf("expected the built-in set, got %d questions", len(questions))
	}
}

func TestLoadQuestions_YAML(t *testing.T) {
	content := `questions:
  - id: custom-1
    category: gst
    text: "What is the current GST rate?"
    expect_class: established_law
    expect_keywords: ["15%"]
  - id: custom-2
    category: paye
    text: "Latest PAYE updates"
    expect_class: recent_changes
`
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	questions, err := LoadQuestions(path)
	if err != nil {
		t.Fatalf("LoadQuestions failed: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].ID != "custom-1" || questions[0].ExpectClass != "established_law" {
		t.Errorf("unexpected first question: %+v", questions[0])
	}
	if len(questions[0].ExpectKeywords) != 1 || questions[0].ExpectKeywords[0] != "15%" {
		t.Errorf("keywords did not parse: %+v", questions[0].ExpectKeywords)
	}
}

func TestLoadQuestions_MissingID(t *testing.T) {
	content := `questions:
  - category: gst
    text: "What is the current GST rate?"
`
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadQuestions(path)
	if err == nil {
		t.Fatal("expected error for question without an ID")
	}
}

func TestFilterByCategory(t *testing.T) {
	questions := DefaultQuestions()

	gst := FilterByCategory(questions, "gst")
	if len(gst) == 0 {
		t.Fatal("expected gst questions")
	}
	for _, q := range gst {
		if q.Category != "gst" {
			t.Errorf("filter leaked category %q", q.Category)
		}
	}

	all := FilterByCategory(questions, "")
	if len(all) != len(questions) {
		t.Errorf("empty filter should keep everything, got %d of %d", len(all), len(questions))
	}

	none := FilterByCategory(questions, "no-such-category")
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestChecks_Score(t *testing.T) {
	perfect := Checks{
		ClassificationMatch:  true,
		KeywordCoverage:      true,
		CitationPresence:     true,
		ConfidenceSane:       true,
		LatencyUnderDeadline: true,
	}
	if perfect.Score() != 5 {
		t.Errorf("expected 5, got %d", perfect.Score())
	}

	if (Checks{}).Score() != 0 {
		t.Errorf("expected 0, got %d", (Checks{}).Score())
	}

	three := Checks{ClassificationMatch: true, CitationPresence: true, ConfidenceSane: true}
	if three.Score() != 3 {
		t.Errorf("expected 3, got %d", three.Score())
	}
}

func TestRunner_Run_ScoresAndWritesReport(t *testing.T) {
	questions := []Question{
		{ID: "q1", Category: "gst", Text: "What is the current GST rate?", ExpectClass: "established_law", ExpectKeywords: []string{"15%"}},
		{ID: "q2", Category: "gst", Text: "GST misroute", ExpectClass: "established_law"},
		{ID: "q3", Category: "paye", Text: "PAYE question", ExpectClass: "established_law"},
	}

	answerer := &mockAnswerer{results: map[string]*pipeline.AskResult{
		// Perfect: right class, keyword present, cited, sane confidence, fast
		"What is the current GST rate?": askResult(model.ClassEstablishedLaw,
			"The GST rate is 15% [1].", "GST in New Zealand is 15%.", 0.95, 100*time.Millisecond),
		// Misclassified but otherwise fine: loses one point
		"GST misroute": askResult(model.ClassHybrid,
			"Answer [1].", "Some GST content.", 0.8, 100*time.Millisecond),
		// Perfect again
		"PAYE question": askResult(model.ClassEstablishedLaw,
			"PAYE is due on the 20th [1].", "PAYE payment due by the 20th.", 0.9, 100*time.Millisecond),
	}}

	cfg := model.DefaultConfig()
	cfg.Eval.OutputDir = t.TempDir()
	cfg.Retrieval.OverallDeadline = 10 * time.Second

	runner := NewRunner(answerer, &cfg)
	report, err := runner.Run(context.Background(), questions)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.RunID) != 8 {
		t.Errorf("expected 8-character run ID, got %q", report.RunID)
	}
	if len(report.Questions) != 3 {
		t.Fatalf("expected 3 scored questions, got %d", len(report.Questions))
	}

	scores := map[string]int{}
	for _, q := range report.Questions {
		scores[q.ID] = q.Score
	}
	if scores["q1"] != 5 {
		t.Errorf("q1: expected score 5, got %d", scores["q1"])
	}
	if scores["q2"] != 4 {
		t.Errorf("q2: expected score 4 after misclassification, got %d", scores["q2"])
	}
	if scores["q3"] != 5 {
		t.Errorf("q3: expected score 5, got %d", scores["q3"])
	}

	gst, ok := report.Categories["gst"]
	if !ok {
		t.Fatal("missing gst category stats")
	}
	if gst.Questions != 2 {
		t.Errorf("expected 2 gst questions, got %d", gst.Questions)
	}
	if gst.MeanScore != 4.5 {
		t.Errorf("expected gst mean 4.5, got %.2f", gst.MeanScore)
	}

	wantMean := float64(5+4+5) / 3
	if report.MeanScore != wantMean {
		t.Errorf("expected overall mean %.3f, got %.3f", wantMean, report.MeanScore)
	}

	// The report lands on disk as eval-<runID>.json
	path := runner.ReportPath(report.RunID)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	var fromDisk Report
	if err := json.Unmarshal(data, &fromDisk); err != nil {
		t.Fatalf("report file does not parse: %v", err)
	}
	if fromDisk.RunID != report.RunID {
		t.Errorf("run ID mismatch: %q vs %q", fromDisk.RunID, report.RunID)
	}
}

func TestRunner_ScoreQuestion_ErrorGivesZero(t *testing.T) {
	answerer := &mockAnswerer{err: errors.New("all sources failed")}

	cfg := model.DefaultConfig()
	cfg.Eval.OutputDir = t.TempDir()

	runner := NewRunner(answerer, &cfg)
	report, err := runner.Run(context.Background(), []Question{
		{ID: "q1", Category: "gst", Text: "What is the current GST rate?", ExpectClass: "established_law"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	q := report.Questions[0]
	if q.Score != 0 {
		t.Errorf("expected score 0 on error, got %d", q.Score)
	}
	if q.Error == "" {
		t.Error("expected the failure to be recorded")
	}
	if report.Categories["gst"].Errors != 1 {
		t.Errorf("expected 1 error in gst stats, got %d", report.Categories["gst"].Errors)
	}
}

func TestRunner_KeywordCoverage_FromEvidenceAlone(t *testing.T) {
	// Degraded answer: no prose, but the evidence carries the keyword
	res := askResult(model.ClassEstablishedLaw, "", "GST in New Zealand is 15%.", 0.95, 50*time.Millisecond)

	if !keywordsCovered([]string{"15%"}, res) {
		t.Error("keywords in evidence should count")
	}
	if keywordsCovered([]string{"42%"}, res) {
		t.Error("absent keyword should fail coverage")
	}
	if !keywordsCovered(nil, res) {
		t.Error("no expected keywords always passes")
	}
}

func TestRunner_LatencyCheck(t *testing.T) {
	slow := askResult(model.ClassEstablishedLaw, "Answer [1].", "GST is 15%.", 0.95, 3*time.Second)

	answerer := &mockAnswerer{results: map[string]*pipeline.AskResult{"q": slow}}

	cfg := model.DefaultConfig()
	cfg.Eval.OutputDir = t.TempDir()
	cfg.Retrieval.OverallDeadline = time.Second

	runner := NewRunner(answerer, &cfg)
	report, err := runner.Run(context.Background(), []Question{
		{ID: "q1", Category: "gst", Text: "q", ExpectClass: "established_law"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	q := report.Questions[0]
	if q.Checks.LatencyUnderDeadline {
		t.Error("3s answer should fail a 1s deadline check")
	}
	if q.Score != 4 {
		t.Errorf("expected score 4, got %d", q.Score)
	}
}
