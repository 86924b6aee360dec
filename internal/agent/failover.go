package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// FailoverClient wraps an LLM registry to try fallback providers on failure.
// Each provider is tried at most once per call.
type FailoverClient struct {
	registry  *llm.Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient creates a client that tries the primary provider first,
// then falls back through the list on retryable errors (401, 403, 429, 5xx).
func NewFailoverClient(registry *llm.Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("failover"),
	}
}

// Name returns the primary provider name.
func (f *FailoverClient) Name() string { return f.primary }

// NativeTools reports whether every provider in the chain returns structured tool calls.
func (f *FailoverClient) NativeTools() bool {
	clients := f.chain()
	if len(clients) == 0 {
		return false
	}
	for _, c := range clients {
		if !llm.SupportsNativeTools(c) {
			return false
		}
	}
	return true
}

// chain resolves the provider order, dropping unknown and repeated providers.
func (f *FailoverClient) chain() []llm.Client {
	var out []llm.Client
	seen := map[string]bool{}
	for _, name := range append([]string{f.primary}, f.fallbacks...) {
		c, err := f.registry.Resolve(name)
		if err != nil {
			f.log.Debug().Str("provider", name).Err(err).Msg("no provider, skipping")
			continue
		}
		if seen[c.Name()] {
			continue
		}
		seen[c.Name()] = true
		out = append(out, c)
	}
	return out
}

// Complete tries the primary provider, falling back on retryable errors.
// A model override in req only applies to the primary provider.
func (f *FailoverClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	clients := f.chain()
	if len(clients) == 0 {
		return nil, &llm.ProviderError{Provider: f.primary, Message: "no provider configured"}
	}

	var lastErr error
	for i, client := range clients {
		if i > 0 {
			req.Model = ""
		}
		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) {
			return nil, err
		}
		if i < len(clients)-1 {
			f.log.Warn().
				Str("provider", client.Name()).
				Err(err).
				Msg("retryable error, trying next provider")
		}
	}

	return nil, lastErr
}

// isRetryable checks if the error suggests trying another provider.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 401, 403, 429, 500, 502, 503, 529:
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "timeout")
}
