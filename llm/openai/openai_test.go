package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/llm"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewProvider(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p, srv
}

func TestComplete(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-3.5-turbo" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("messages = %d, want 2 (system + user)", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first message role = %q, want system", req.Messages[0].Role)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature = %v, want 0", req.Temperature)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-3.5-turbo",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Explain goroutine scheduling."}},
			},
			"usage": map[string]int{"prompt_tokens": 50, "completion_tokens": 10, "total_tokens": 60},
		})
	})

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "You are a technical interviewer.",
		Messages:     []llm.Message{{Role: "user", Content: "This is question #1"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "Explain goroutine scheduling." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 60 {
		t.Errorf("total tokens = %d, want 60", resp.Usage.TotalTokens)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"model": "gpt-3.5-turbo", "choices": []any{}})
	})

	_, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if !errors.HasCode(err, errors.ErrCodeContentEmpty) {
		t.Errorf("expected content-empty error, got %v", err)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "gpt-3.5-turbo",
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": ""}}},
		})
	})

	_, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if !errors.HasCode(err, errors.ErrCodeContentEmpty) {
		t.Errorf("expected content-empty error, got %v", err)
	}
}

func TestCompleteServerErrorIsAdapterFailure(t *testing.T) {
	calls := 0
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(500)
	})

	_, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if !errors.HasCode(err, errors.ErrCodeAdapterFailure) {
		t.Errorf("expected adapter-failure error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (retry budget)", calls)
	}
}

func TestCompleteModelOverride(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "custom-model" {
			t.Errorf("model = %q, want custom-model", req.Model)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "custom-model",
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "ok"}}},
		})
	})

	_, err := p.Complete(context.Background(), llm.CompletionRequest{
		Model:    "custom-model",
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	if _, err := NewProvider(Config{}); err == nil {
		t.Fatal("expected error when api_key missing")
	}
}

func TestFactory(t *testing.T) {
	f := Factory()
	p, err := f(map[string]any{"api_key": "k", "model": "m"})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestRegistryResolvesConfiguredBackend(t *testing.T) {
	r := llm.NewRegistry()
	r.RegisterFactory(ProviderName, Factory())

	cfg := Config{APIKey: "k", Model: "gpt-4"}
	p, err := r.Create(ProviderName, cfg.Settings())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}

	if _, err := r.Create("no-such-backend", cfg.Settings()); err == nil {
		t.Error("expected error for unknown backend name")
	}
}
