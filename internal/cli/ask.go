package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/nomos/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	intent      string
	topK        int
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single compliance question with citations",
	Long: `Ask answers a single NZ tax or company compliance question:
- Classify the question (established law, recent changes, procedural, hybrid)
- Retrieve evidence from the knowledge base and official web sources
- Deduplicate, rank, and weight evidence by recency
- Compose an answer where every claim carries a numbered citation
- Flag stale evidence instead of presenting it as current

Example:
  nomos ask "What is the current GST rate?"
  nomos ask "Latest PAYE changes" --intent recent --json answer.json
  nomos ask "How do I register for GST?" --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	// Output flags
	askCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	askCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Routing flags
	askCmd.Flags().StringVar(&intent, "intent", "", "declared intent (established, recent, procedural, hybrid); overrides classification")
	askCmd.Flags().IntVar(&topK, "top-k", 5, "maximum evidence items per adapter")
	askCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall answer deadline (adapter timeouts sit inside it)")

	// HTTP flags
	askCmd.Flags().StringVar(&userAgent, "ua", "Nomos/0.1 (+https://github.com/ppiankov/nomos)", "HTTP User-Agent")
	askCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh retrieval)")
	askCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	askCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	askCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	askCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	askCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM answer generation (citations-only otherwise)")
	askCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	askCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\n", question)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		if intent != "" {
			fmt.Fprintf(os.Stderr, "Declared intent: %s\n", intent)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Build configuration from flags
	cfg := loadConfig()
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Retrieval.TopK = topK
	cfg.Retrieval.OverallDeadline = timeout
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	// Configure LLM if enabled
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.StrictEvidence = true // Always enforce
		cfg.LLM.HTTPProxy = httpProxy
		cfg.LLM.HTTPSProxy = httpsProxy

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			baseURL := os.Getenv("OLLAMA_BASE_URL")
			if baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	// Create pipeline
	p, err := pipeline.New(&cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	// Answer question
	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Classifying and retrieving evidence...\n")
	}

	result, err := p.Answer(ctx, question, intent)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Classified as %s (rule: %s)\n", result.Decision.Class, result.Decision.Rule)
		fmt.Fprintf(os.Stderr, "✓ Retrieved %d evidence items\n", len(result.Outcome.Items))
		if result.Outcome.UsedFallback {
			fmt.Fprintf(os.Stderr, "✓ Fell back to %s adapter\n", result.Outcome.FallbackTo)
		}
		fmt.Fprintf(os.Stderr, "✓ Resolved %d unique sources (confidence: %.2f)\n",
			len(result.Resolution.Evidence), result.Resolution.OverallConfidence)
		if result.Answer.Generator != "" {
			fmt.Fprintf(os.Stderr, "✓ Generated answer using %s\n", result.Answer.Generator)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	if err := p.RenderResult(result, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
