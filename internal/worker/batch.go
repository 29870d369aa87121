package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/nomos/internal/model"
)

// Asker defines the interface for answering a single question
type Asker interface {
	Ask(ctx context.Context, question string) (model.Response, error)
}

// AskJob represents a single-question job
type AskJob struct {
	Question string
	Asker    Asker
	Timeout  time.Duration // per-question; 0 means no limit beyond ctx
}

// Execute executes the ask job
func (j *AskJob) Execute(ctx context.Context) Result {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	response, err := j.Asker.Ask(ctx, j.Question)
	if err != nil {
		return &AskOutcome{
			Question: j.Question,
			Error:    err,
		}
	}
	return &AskOutcome{
		Question: j.Question,
		Response: response,
	}
}

// AskOutcome represents the result of an ask job
type AskOutcome struct {
	Question string
	Response model.Response
	Error    error
}

// GetError returns the error from the outcome
func (o *AskOutcome) GetError() error {
	return o.Error
}

// BatchProcessor answers multiple questions concurrently
type BatchProcessor struct {
	asker       Asker
	concurrency int
	timeout     time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(asker Asker, concurrency int, timeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		asker:       asker,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// ProcessQuestions answers multiple questions concurrently. Outcomes are
// returned in completion order; each carries its question for matching.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskOutcome {
	if len(questions) == 0 {
		return []*AskOutcome{}
	}

	// Create worker pool
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit jobs
	for _, question := range questions {
		job := &AskJob{
			Question: question,
			Asker:    b.asker,
			Timeout:  b.timeout,
		}
		pool.Submit(job)
	}

	// Wait for all jobs to complete
	results := pool.Wait()

	// Convert to AskOutcomes
	outcomes := make([]*AskOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*AskOutcome)
	}

	return outcomes
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskOutcome, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file (one per line)
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate questions
		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
