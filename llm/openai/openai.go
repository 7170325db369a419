// Package openai implements llm.Provider against an OpenAI-compatible
// chat completions API. The default base URL points at OpenRouter, which
// speaks the same protocol.
package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/httpclient"
	"github.com/skillsenselab/interviewd/llm"
	"github.com/skillsenselab/interviewd/provider"
)

const (
	// ProviderName is the registered name for the OpenAI-compatible provider.
	ProviderName = "openai"

	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the OpenAI-compatible provider.
type Config struct {
	// BaseURL is the API base URL. Defaults to the OpenRouter endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey is the bearer token.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Model is the default model for completion requests.
	Model string `yaml:"model" mapstructure:"model"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.MissingField("api_key")
	}
	return nil
}

// Settings flattens the config into the generic map consumed by Factory.
func (c Config) Settings() map[string]any {
	return map[string]any{
		"base_url": c.BaseURL,
		"api_key":  c.APIKey,
		"model":    c.Model,
		"timeout":  c.Timeout,
	}
}

// Provider implements llm.Provider using the chat completions endpoint.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new OpenAI-compatible completion provider.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return nil, err
	}

	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Provider instances from a
// generic config map.
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		oc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			oc.Timeout = v
		}
		return NewProvider(oc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the API is reachable with the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/models",
	})
	return err == nil && resp.IsSuccess()
}

// Complete sends a chat completion request and returns the full response.
// A response with no choices or empty content is a content error, not a
// transport failure, and is never retried.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	body := p.buildChatRequest(req)

	resp, err := httpclient.Post[chatResponse](p.client, ctx, "/chat/completions", body)
	if err != nil {
		return nil, errors.AdapterFailure(ProviderName, err)
	}

	if len(resp.Data.Choices) == 0 || resp.Data.Choices[0].Message.Content == "" {
		return nil, errors.ContentEmpty(ProviderName)
	}

	return &llm.CompletionResponse{
		Content: resp.Data.Choices[0].Message.Content,
		Model:   resp.Data.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Data.Usage.PromptTokens,
			CompletionTokens: resp.Data.Usage.CompletionTokens,
			TotalTokens:      resp.Data.Usage.TotalTokens,
		},
	}, nil
}

// --- internal chat completions API types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// buildChatRequest creates an API request from a llm.CompletionRequest.
func (p *Provider) buildChatRequest(req llm.CompletionRequest) chatRequest {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	msgs := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}

	return chatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}
