package model

import "time"

// Config is the complete runtime configuration. It is built once (defaults,
// then config file, env, and flags layered by the CLI) and passed explicitly
// into constructors. Core packages never read ambient global state, so
// concurrent requests with different configurations stay isolated.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" json:"http"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" json:"retrieval"`
	Currency     CurrencyConfig     `yaml:"currency" json:"currency"`
	Cache        CacheConfig        `yaml:"cache" json:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" json:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" json:"rate_limiting"`
	Search       SearchConfig       `yaml:"search" json:"search"`
	Authority    AuthorityConfig    `yaml:"authority" json:"authority"`
	Knowledge    KnowledgeConfig    `yaml:"knowledge" json:"knowledge"`
	LLM          LLMConfig          `yaml:"llm" json:"llm"`
	Eval         EvalConfig         `yaml:"eval" json:"eval"`
	Output       OutputConfig       `yaml:"output" json:"output"`
}

// HTTPConfig controls outbound HTTP behavior
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" json:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy" json:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy" json:"no_proxy,omitempty"`
}

// RetrievalConfig controls adapter dispatch and deadlines
type RetrievalConfig struct {
	TopK            int           `yaml:"top_k" json:"top_k"`
	KBTimeout       time.Duration `yaml:"kb_timeout" json:"kb_timeout"`             // Knowledge base adapter deadline
	WebTimeout      time.Duration `yaml:"web_timeout" json:"web_timeout"`           // Web search adapter deadline
	OverallDeadline time.Duration `yaml:"overall_deadline" json:"overall_deadline"` // Whole-request budget
}

// CurrencyConfig controls recency weighting and staleness detection
type CurrencyConfig struct {
	ThresholdDays int     `yaml:"threshold_days" json:"threshold_days"` // Evidence older than this is down-weighted
	DecayFactor   float64 `yaml:"decay_factor" json:"decay_factor"`     // Multiplier applied past the threshold
}

// CacheConfig controls the retrieval cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir,omitempty"` // Disk layer location; empty = memory only
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig controls batch processing parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// RateLimitingConfig controls per-host request pacing for web search
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// SearchConfig controls focused web search
type SearchConfig struct {
	BaseURL      string   `yaml:"base_url" json:"base_url"`
	MaxResults   int      `yaml:"max_results" json:"max_results"`
	FocusDomains []string `yaml:"focus_domains" json:"focus_domains"` // site: filters, also primary-authority hosts
}

// AuthorityConfig controls how web sources map to authority tiers.
// Hosts match on exact name or dot-separated suffix, so ird.govt.nz
// covers www.ird.govt.nz.
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" json:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" json:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map" json:"domain_map,omitempty"` // Exact host -> tier overrides
}

// KnowledgeConfig controls the built-in compliance knowledge base
type KnowledgeConfig struct {
	ExtraPath string `yaml:"extra_path" json:"extra_path,omitempty"` // Optional YAML file with additional entries
}

// LLMConfig controls the generation collaborator
type LLMConfig struct {
	Provider       string `yaml:"provider" json:"provider"` // openai, anthropic, ollama; empty = disabled
	Model          string `yaml:"model" json:"model"`
	APIKey         string `yaml:"-" json:"-"` // Environment only, never persisted
	BaseURL        string `yaml:"base_url" json:"base_url,omitempty"`
	Timeout        int    `yaml:"timeout" json:"timeout"` // Seconds
	StrictEvidence bool   `yaml:"strict_evidence" json:"strict_evidence"`
	MaxTokens      int    `yaml:"max_tokens" json:"max_tokens"`
	HTTPProxy      string `yaml:"http_proxy" json:"http_proxy,omitempty"`
	HTTPSProxy     string `yaml:"https_proxy" json:"https_proxy,omitempty"`
	NoProxy        string `yaml:"no_proxy" json:"no_proxy,omitempty"`
}

// EvalConfig controls the golden-question evaluation harness
type EvalConfig struct {
	QuestionsPath string `yaml:"questions_path" json:"questions_path,omitempty"` // Empty = built-in set
	OutputDir     string `yaml:"output_dir" json:"output_dir"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the standard configuration. The overall deadline
// tracks the 10-second response target; per-adapter timeouts sit inside it.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Nomos/0.1 (+https://github.com/ppiankov/nomos)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			KBTimeout:       2 * time.Second,
			WebTimeout:      6 * time.Second,
			OverallDeadline: 10 * time.Second,
		},
		Currency: CurrencyConfig{
			ThresholdDays: 30,
			DecayFactor:   0.6,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1.0,
			BurstSize:         2,
		},
		Search: SearchConfig{
			BaseURL:    "https://html.duckduckgo.com/html/",
			MaxResults: 5,
			FocusDomains: []string{
				"ird.govt.nz",
				"companies.govt.nz",
				"mbie.govt.nz",
			},
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"ird.govt.nz",
				"companies.govt.nz",
				"mbie.govt.nz",
				"employment.govt.nz",
				"legislation.govt.nz",
				"business.govt.nz",
			},
			SecondaryDomains: []string{
				"charteredaccountantsanz.com",
				"businessnz.org.nz",
				"xero.com",
			},
		},
		LLM: LLMConfig{
			Provider:       "", // Disabled until explicitly enabled
			Model:          "gpt-4o-mini",
			Timeout:        30,
			StrictEvidence: true,
			MaxTokens:      700,
		},
		Eval: EvalConfig{
			OutputDir: "./eval-logs",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
