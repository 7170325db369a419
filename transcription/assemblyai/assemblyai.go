// Package assemblyai implements transcription.Provider against the
// AssemblyAI v2 API: upload the audio bytes, submit a transcription job,
// then poll until the job reaches a terminal status.
package assemblyai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/httpclient"
	"github.com/skillsenselab/interviewd/provider"
	"github.com/skillsenselab/interviewd/transcription"
)

const (
	// ProviderName is the registered name for the AssemblyAI provider.
	ProviderName = "assemblyai"

	defaultBaseURL      = "https://api.assemblyai.com"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = time.Second
	defaultMaxPolls     = 120
)

// Job statuses reported by the transcript endpoint.
const (
	statusQueued     = "queued"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusError      = "error"
)

// Config holds configuration for the AssemblyAI transcription provider.
type Config struct {
	// BaseURL is the API base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey is sent in the Authorization header.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Timeout is the per-request timeout for upload/submit/poll calls.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// PollInterval is the delay between status polls.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// MaxPolls bounds the number of status polls before giving up.
	MaxPolls int `yaml:"max_polls" mapstructure:"max_polls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = defaultMaxPolls
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
		"base_url":      c.BaseURL,
		"api_key":       c.APIKey,
		"timeout":       c.Timeout,
		"poll_interval": c.PollInterval,
		"max_polls":     c.MaxPolls,
	}
}

// Provider implements transcription.Provider using the AssemblyAI v2 API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new AssemblyAI transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyAuthHeader(cfg.APIKey, "Authorization"),
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return nil, err
	}

	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Provider instances from a
// generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		ac := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			ac.BaseURL = v
		}
		if v, ok := cfg["api_key"].(string); ok {
			ac.APIKey = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			ac.Timeout = v
		}
		if v, ok := cfg["poll_interval"].(time.Duration); ok {
			ac.PollInterval = v
		}
		if v, ok := cfg["max_polls"].(int); ok {
			ac.MaxPolls = v
		}
		return NewProvider(ac)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks that the API accepts the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	// Listing transcripts is the cheapest authenticated call.
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/v2/transcript",
		Query:  map[string]string{"limit": "1"},
	})
	return err == nil && resp.IsSuccess()
}

// Transcribe uploads the audio file, submits a transcription job, and polls
// until the job completes. Every poll tick honors context cancellation.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	audioURL, err := p.upload(ctx, req.AudioPath)
	if err != nil {
		return nil, err
	}

	jobID, err := p.submit(ctx, audioURL, req.Language)
	if err != nil {
		return nil, err
	}

	return p.poll(ctx, jobID)
}

// --- internal AssemblyAI v2 API types ---

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	Text          string  `json:"text"`
	Error         string  `json:"error"`
	AudioDuration float64 `json:"audio_duration"`
	LanguageCode  string  `json:"language_code"`
}

// upload sends the raw audio bytes and returns the hosted URL.
func (p *Provider) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.TranscriptionFailed(fmt.Sprintf("read audio file: %v", err))
	}

	resp, err := httpclient.Post[uploadResponse](p.client, ctx, "/v2/upload", data,
		httpclient.WithHeader("Content-Type", "application/octet-stream"))
	if err != nil {
		return "", errors.AdapterFailure(ProviderName, err)
	}
	if resp.Data.UploadURL == "" {
		return "", errors.ContentEmpty(ProviderName)
	}
	return resp.Data.UploadURL, nil
}

// submit creates a transcription job for the uploaded audio.
func (p *Provider) submit(ctx context.Context, audioURL, language string) (string, error) {
	body := transcriptRequest{AudioURL: audioURL, LanguageCode: language}

	resp, err := httpclient.Post[transcriptResponse](p.client, ctx, "/v2/transcript", body)
	if err != nil {
		return "", errors.AdapterFailure(ProviderName, err)
	}
	if resp.Data.ID == "" {
		return "", errors.ContentEmpty(ProviderName)
	}
	if resp.Data.Status == statusError {
		return "", errors.TranscriptionFailed(resp.Data.Error)
	}
	return resp.Data.ID, nil
}

// poll fetches the job status until it reaches a terminal state, the poll
// budget is exhausted, or the context is canceled.
func (p *Provider) poll(ctx context.Context, jobID string) (*transcription.Result, error) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < p.cfg.MaxPolls; attempt++ {
		resp, err := httpclient.Get[transcriptResponse](p.client, ctx, "/v2/transcript/"+jobID)
		if err != nil {
			return nil, errors.AdapterFailure(ProviderName, err)
		}

		switch resp.Data.Status {
		case statusCompleted:
			return &transcription.Result{
				Text:     resp.Data.Text,
				ID:       resp.Data.ID,
				Duration: resp.Data.AudioDuration,
				Language: resp.Data.LanguageCode,
			}, nil
		case statusError:
			return nil, errors.TranscriptionFailed(resp.Data.Error)
		case statusQueued, statusProcessing:
			// keep polling
		default:
			return nil, errors.TranscriptionFailed(fmt.Sprintf("unexpected status %q", resp.Data.Status))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, errors.TranscriptionFailed(fmt.Sprintf("job %s did not complete after %d polls", jobID, p.cfg.MaxPolls))
}
