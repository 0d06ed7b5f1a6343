package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider pairs a named client with the model it should serve.
type Provider struct {
	Name   string
	Model  string
	Client Client
}

// Failover tries configured providers in order until one answers.
// Each provider carries its own model name, so callers do not pass one.
type Failover struct {
	providers []Provider
	logger    *slog.Logger
}

// NewFailover creates a failover chain over the given providers.
func NewFailover(logger *slog.Logger, providers ...Provider) *Failover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Failover{
		providers: providers,
		logger:    logger.With("component", "llm"),
	}
}

// Providers returns the configured provider names in order.
func (f *Failover) Providers() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name
	}
	return names
}

// Chat sends the request to each provider in order, returning the first
// successful response. Context cancellation stops the chain.
func (f *Failover) Chat(ctx context.Context, messages []Message, tools []map[string]any) (*ChatResponse, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	var lastErr error
	for _, p := range f.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := p.Client.Chat(ctx, p.Model, messages, tools)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		f.logger.Warn("provider failed, trying next",
			"provider", p.Name,
			"model", p.Model,
			"error", err,
		)
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// Ping succeeds if any provider is reachable.
func (f *Failover) Ping(ctx context.Context) error {
	if len(f.providers) == 0 {
		return fmt.Errorf("no providers configured")
	}
	var lastErr error
	for _, p := range f.providers {
		if err := p.Client.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("no provider reachable: %w", lastErr)
}
