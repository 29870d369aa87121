package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/nomos/internal/model"
)

// NewProvider builds the configured provider. An empty provider name
// means generation is disabled; the pipeline then serves citations-only
// answers.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel maps the config-file LLM section onto the provider
// config, carrying the proxy settings along so providers reach the
// network the same way the web client does.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:       mc.Provider,
		Model:          mc.Model,
		APIKey:         mc.APIKey,
		BaseURL:        mc.BaseURL,
		Timeout:        mc.Timeout,
		StrictEvidence: mc.StrictEvidence,
		MaxTokens:      mc.MaxTokens,
		HTTPProxy:      mc.HTTPProxy,
		HTTPSProxy:     mc.HTTPSProxy,
		NoProxy:        mc.NoProxy,
	}
}
