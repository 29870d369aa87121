package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/nomos/internal/model"
	"github.com/ppiankov/nomos/internal/pipeline"
)

// Answerer is the part of the pipeline the runner needs
type Answerer interface {
	Answer(ctx context.Context, question, intent string) (*pipeline.AskResult, error)
}

// Checks records the five pass/fail criteria behind a question score
type Checks struct {
	ClassificationMatch  bool `json:"classification_match"`
	KeywordCoverage      bool `json:"keyword_coverage"`
	CitationPresence     bool `json:"citation_presence"`
	ConfidenceSane       bool `json:"confidence_sane"`
	LatencyUnderDeadline bool `json:"latency_under_deadline"`
}

// Score counts the passing checks
func (c Checks) Score() int {
	score := 0
	for _, ok := range []bool{
		c.ClassificationMatch,
		c.KeywordCoverage,
		c.CitationPresence,
		c.ConfidenceSane,
		c.LatencyUnderDeadline,
	} {
		if ok {
			score++
		}
	}
	return score
}

// QuestionResult is the scored outcome for one golden question
type QuestionResult struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Text        string  `json:"text"`
	ExpectClass string  `json:"expect_class"`
	Class       string  `json:"class,omitempty"`
	Score       int     `json:"score"` // 0-5
	Checks      Checks  `json:"checks"`
	Confidence  float64 `json:"confidence"`
	Citations   int     `json:"citations"`
	ElapsedMS   int64   `json:"elapsed_ms"`
	Error       string  `json:"error,omitempty"`
}

// CategoryStats aggregates scores within one category
type CategoryStats struct {
	Questions int     `json:"questions"`
	MeanScore float64 `json:"mean_score"`
	Errors    int     `json:"errors"`
}

// Report is the complete record of one evaluation run
type Report struct {
	RunID      string                   `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	ElapsedMS  int64                    `json:"elapsed_ms"`
	Questions  []QuestionResult         `json:"questions"`
	Categories map[string]CategoryStats `json:"categories"`
	MeanScore  float64                  `json:"mean_score"`
	MaxScore   int                      `json:"max_score"`
}

// Runner drives golden questions through the pipeline and scores the results
type Runner struct {
	answerer  Answerer
	deadline  time.Duration
	outputDir string
}

// NewRunner creates an evaluation runner
func NewRunner(answerer Answerer, cfg *model.Config) *Runner {
	return &Runner{
		answerer:  answerer,
		deadline:  cfg.Retrieval.OverallDeadline,
		outputDir: cfg.Eval.OutputDir,
	}
}

// Run asks every question, scores the answers, and writes the report as
// eval-<runID>.json in the output directory. The report is returned even
// when some questions fail; only an unwritable report file is an error.
func (r *Runner) Run(ctx context.Context, questions []Question) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString()[:8],
		StartedAt:  time.Now().UTC(),
		Categories: make(map[string]CategoryStats),
		MaxScore:   5,
	}

	start := time.Now()
	for _, q := range questions {
		report.Questions = append(report.Questions, r.scoreQuestion(ctx, q))
	}
	report.ElapsedMS = time.Since(start).Milliseconds()

	r.aggregate(report)

	if err := r.write(report); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}

	return report, nil
}

// scoreQuestion runs one question and applies the five checks
func (r *Runner) scoreQuestion(ctx context.Context, q Question) QuestionResult {
	result := QuestionResult{
		ID:          q.ID,
		Category:    q.Category,
		Text:        q.Text,
		ExpectClass: q.ExpectClass,
	}

	res, err := r.answerer.Answer(ctx, q.Text, "")
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Class = res.Decision.Class.String()
	result.Confidence = res.Answer.OverallConfidence
	result.Citations = len(res.Answer.Citations)
	result.ElapsedMS = res.Elapsed.Milliseconds()

	result.Checks = Checks{
		ClassificationMatch:  result.Class == q.ExpectClass,
		KeywordCoverage:      keywordsCovered(q.ExpectKeywords, res),
		CitationPresence:     len(res.Answer.Citations) > 0,
		ConfidenceSane:       res.Answer.OverallConfidence > 0 && res.Answer.OverallConfidence <= 1,
		LatencyUnderDeadline: r.deadline <= 0 || res.Elapsed <= r.deadline,
	}
	result.Score = result.Checks.Score()

	return result
}

// keywordsCovered reports whether every expected keyword appears in the
// answer text or the cited evidence, case-insensitively. Degraded answers
// can still pass on evidence alone.
func keywordsCovered(keywords []string, res *pipeline.AskResult) bool {
	if len(keywords) == 0 {
		return true
	}

	var b strings.Builder
	b.WriteString(res.Answer.AnswerText)
	for _, item := range res.Resolution.Evidence {
		b.WriteString("\n")
		b.WriteString(item.Content)
	}
	haystack := strings.ToLower(b.String())

	for _, kw := range keywords {
		if !strings.Contains(haystack, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// aggregate fills the per-category stats and the overall mean
func (r *Runner) aggregate(report *Report) {
	if len(report.Questions) == 0 {
		return
	}

	type bucket struct {
		count  int
		total  int
		errors int
	}
	buckets := make(map[string]*bucket)

	total := 0
	for _, q := range report.Questions {
		b := buckets[q.Category]
		if b == nil {
			b = &bucket{}
			buckets[q.Category] = b
		}
		b.count++
		b.total += q.Score
		if q.Error != "" {
			b.errors++
		}
		total += q.Score
	}

	for category, b := range buckets {
		report.Categories[category] = CategoryStats{
			Questions: b.count,
			MeanScore: float64(b.total) / float64(b.count),
			Errors:    b.errors,
		}
	}
	report.MeanScore = float64(total) / float64(len(report.Questions))
}

// write stores the report as eval-<runID>.json in the output directory
func (r *Runner) write(report *Report) error {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(r.outputDir, "eval-"+report.RunID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// ReportPath returns where a report with the given run ID would be written
func (r *Runner) ReportPath(runID string) string {
	return filepath.Join(r.outputDir, "eval-"+runID+".json")
}
