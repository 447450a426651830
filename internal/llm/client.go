package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client is an abstraction over text completion providers.
type Client interface {
	// Complete generates text from a prompt using the named model.
	Complete(ctx context.Context, prompt, model string, temperature float32) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// RouterConfig holds provider credentials, resolved from process-wide
// configuration rather than passed per call.
type RouterConfig struct {
	GeminiAPIKey    string
	AnthropicAPIKey string
}

// Router selects a backing provider by model-name prefix: gemini-* routes to
// Google Gemini, claude-* to Anthropic. Providers are constructed lazily per
// configured credential.
type Router struct {
	gemini *GeminiClient
	claude *ClaudeClient
}

// NewRouter creates clients for every provider with a configured credential.
// At least one credential is required.
func NewRouter(ctx context.Context, cfg RouterConfig) (*Router, error) {
	r := &Router{}

	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		r.gemini = gemini
	}
	if cfg.AnthropicAPIKey != "" {
		r.claude = NewClaudeClient(cfg.AnthropicAPIKey)
	}

	if r.gemini == nil && r.claude == nil {
		return nil, fmt.Errorf("no provider credentials configured")
	}
	return r, nil
}

// Complete routes the call to the provider owning the model family.
func (r *Router) Complete(ctx context.Context, prompt, model string, temperature float32) (string, error) {
	switch {
	case strings.HasPrefix(model, "gemini"):
		if r.gemini == nil {
			return "", fmt.Errorf("model %s requires a Gemini API key", model)
		}
		return r.gemini.Complete(ctx, prompt, model, temperature)
	case strings.HasPrefix(model, "claude"):
		if r.claude == nil {
			return "", fmt.Errorf("model %s requires an Anthropic API key", model)
		}
		return r.claude.Complete(ctx, prompt, model, temperature)
	default:
		return "", fmt.Errorf("no provider for model %s", model)
	}
}

// Close releases all provider resources.
func (r *Router) Close() error {
	if r.gemini != nil {
		if err := r.gemini.Close(); err != nil {
			return err
		}
	}
	if r.claude != nil {
		return r.claude.Close()
	}
	return nil
}
