package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/nomos/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a grounded answer from the evidence set
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for grounded answer generation
type GenerateRequest struct {
	// Question is the user's compliance question
	Question string

	// Evidence is the STRICT allowlist of items the model may cite, in
	// citation rank order. The model refers to them by 1-based [n]
	// markers and must not reach beyond this list.
	Evidence model.MergedEvidenceSet

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the LLM's answer output
type GenerateResponse struct {
	// Answer is the generated answer text with inline [n] citations
	Answer string

	// CitedIndexes are the 1-based evidence markers the model actually
	// used (for narrowing the citation list)
	CitedIndexes []int

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictEvidence aborts on citations outside the evidence list
	// (should always be true)
	StrictEvidence bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Model:          "",
		Timeout:        30,
		StrictEvidence: true, // CRITICAL: Always enforce
		MaxTokens:      700,
	}
}

const systemPrompt = "You are a New Zealand business compliance assistant. You answer strictly from the evidence provided and cite items by their [n] markers."

// BuildPrompt constructs the default grounded-answer prompt. The
// numbered evidence list is the model's entire world: it may cite items
// only by their [n] marker and must not introduce outside knowledge.
func BuildPrompt(question string, evidence model.MergedEvidenceSet) string {
	return fmt.Sprintf(`You are answering a New Zealand business compliance question using ONLY the numbered evidence below.

CRITICAL RULES:
1. Use ONLY the listed evidence. Do not rely on outside knowledge.
2. Cite evidence inline with its [n] marker, e.g. "GST is 15%% [1]".
3. If the evidence does not answer the question, state that explicitly.
4. For time-sensitive details, recommend confirming with the official source.
5. Keep the answer to 2-4 sentences of plain language. No speculation.

Question: %s

Evidence:
%s
Answer with [n] citations.`, question, formatEvidence(evidence))
}

// formatEvidence renders the numbered allowlist handed to the model
func formatEvidence(evidence model.MergedEvidenceSet) string {
	if len(evidence) == 0 {
		return "(no evidence available)\n"
	}

	var b strings.Builder
	for i, item := range evidence {
		date := "undated"
		if !item.DatePublished.IsZero() {
			date = item.DatePublished.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "[%d] %s (%s, %s)\n", i+1, item.Content, item.SourceName, date)
	}
	return b.String()
}

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// extractCitedIndexes returns the distinct [n] markers in first-use order
func extractCitedIndexes(text string) []int {
	matches := citationPattern.FindAllStringSubmatch(text, -1)

	seen := make(map[int]bool)
	var indexes []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !seen[n] {
			seen[n] = true
			indexes = append(indexes, n)
		}
	}
	return indexes
}

// verifyCitations checks the answer's markers against the evidence list.
// Markers outside 1..evidenceCount are dropped; in strict evidence mode
// they abort the response instead, because the model cited something it
// was never given.
func verifyCitations(text string, evidenceCount int, strict bool) ([]int, error) {
	all := extractCitedIndexes(text)

	valid := make([]int, 0, len(all))
	for _, idx := range all {
		if idx < 1 || idx > evidenceCount {
			if strict {
				return nil, fmt.Errorf("citation leak: answer cites [%d] but only %d evidence item(s) were provided", idx, evidenceCount)
			}
			continue
		}
		valid = append(valid, idx)
	}
	return valid, nil
}

// firstNonEmpty resolves the request/config/default chain for models
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstPositive resolves the request/config/default chain for limits
func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
