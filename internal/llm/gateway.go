package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Gateway defaults. The call timeout and retry bound absorb transient
// provider failures; response and prompt minimums reject degenerate calls
// and truncated output.
const (
	DefaultCallTimeout    = 30 * time.Second
	DefaultMaxRetries     = 2
	DefaultRetryBaseDelay = time.Second
	DefaultMinPromptLen   = 50
	DefaultMinResponseLen = 100
)

// GatewayOptions tunes gateway resilience behavior. Zero values use defaults.
type GatewayOptions struct {
	CallTimeout    time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	MinPromptLen   int
	MinResponseLen int
}

func (o GatewayOptions) withDefaults() GatewayOptions {
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if o.MinPromptLen <= 0 {
		o.MinPromptLen = DefaultMinPromptLen
	}
	if o.MinResponseLen <= 0 {
		o.MinResponseLen = DefaultMinResponseLen
	}
	return o
}

// Gateway wraps a completion client with caching, per-call timeout, and
// retry-with-backoff. It never interprets prompt or response content.
type Gateway struct {
	client Client
	cache  *Cache
	logger *zap.Logger
	opts   GatewayOptions
}

// NewGateway creates a gateway around client. A nil cache disables caching.
func NewGateway(client Client, cache *Cache, logger *zap.Logger, opts GatewayOptions) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		client: client,
		cache:  cache,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// Generate executes a completion request, serving identical requests from
// the cache. Use GenerateFresh for context-dependent prompts that must not
// be cached.
func (g *Gateway) Generate(ctx context.Context, prompt, model string, temperature float32) (string, error) {
	if len(prompt) < g.opts.MinPromptLen {
		return "", fmt.Errorf("prompt too short: %d chars (minimum %d)", len(prompt), g.opts.MinPromptLen)
	}

	key := CacheKey(model, temperature, prompt)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			g.logger.Debug("completion cache hit", zap.String("model", model))
			return cached, nil
		}
	}

	result, err := g.call(ctx, prompt, model, temperature)
	if err != nil {
		return "", err
	}

	if g.cache != nil {
		g.cache.Set(key, result)
	}
	return result, nil
}

// GenerateFresh executes a completion request bypassing the cache entirely.
func (g *Gateway) GenerateFresh(ctx context.Context, prompt, model string, temperature float32) (string, error) {
	if len(prompt) < g.opts.MinPromptLen {
		return "", fmt.Errorf("prompt too short: %d chars (minimum %d)", len(prompt), g.opts.MinPromptLen)
	}
	return g.call(ctx, prompt, model, temperature)
}

// call invokes the provider with a hard timeout, retrying transient failures
// with exponential backoff. A response shorter than the minimum is invalid
// output, not success.
func (g *Gateway) call(ctx context.Context, prompt, model string, temperature float32) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := g.opts.RetryBaseDelay << (attempt - 1)
			g.logger.Warn("retrying completion call",
				zap.String("model", model),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.opts.CallTimeout)
		result, err := g.client.Complete(callCtx, prompt, model, temperature)
		cancel()

		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if len(result) < g.opts.MinResponseLen {
			lastErr = fmt.Errorf("response too short: %d chars (minimum %d)", len(result), g.opts.MinResponseLen)
			continue
		}
		return result, nil
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", g.opts.MaxRetries+1, lastErr)
}
