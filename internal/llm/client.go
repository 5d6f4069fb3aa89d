// Package llm contains the model backend clients. A backend takes one
// prompt and returns raw text believed to contain JSON; everything about
// coaxing structure out of that text lives elsewhere.
package llm

import (
	"context"

	"rca-agent/internal/config"
)

// Client is a language-model backend.
type Client interface {
	// Name identifies the backend for logs and diagnostics.
	Name() string
	// Complete sends the prompt and returns the raw textual payload.
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewFromConfig picks the Azure backend when it is fully configured and
// falls back to the local Ollama backend otherwise.
func NewFromConfig(cfg *config.Config) Client {
	if cfg.HasAzure() {
		return NewAzureClient(cfg)
	}
	return NewOllamaClient(cfg)
}
