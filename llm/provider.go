// Package llm defines the provider-neutral completion interface used for
// question generation and candidate evaluation.
package llm

import (
	"context"

	"github.com/skillsenselab/interviewd/provider"
)

// Provider is the interface that completion backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// NewRegistry creates a new provider registry for completion providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
