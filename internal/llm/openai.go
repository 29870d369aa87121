package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/nomos/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates answers through the Chat Completions API
// using the go-openai client.
type OpenAIProvider struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAIProvider validates the config and builds the provider. The
// request timeout and proxies live on the HTTP client, so every call
// through the SDK inherits them.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable probes the API by listing models, the cheapest
// authenticated call
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Generate produces a grounded answer via the Chat Completions API and
// verifies its citations against the evidence allowlist
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Question, req.Evidence)
	}

	model := firstNonEmpty(req.Model, p.cfg.Model, openai.GPT4oMini)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   firstPositive(req.MaxTokens, p.cfg.MaxTokens, 700),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)

	cited, err := verifyCitations(answer, len(req.Evidence), p.cfg.StrictEvidence)
	if err != nil {
		return nil, err
	}

	return &GenerateResponse{
		Answer:       answer,
		CitedIndexes: cited,
		Model:        firstNonEmpty(resp.Model, model),
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}
