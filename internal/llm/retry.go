package llm

import (
	"context"

	facterrors "factotum/internal/errors"
	"factotum/internal/logging"
)

// retryClient wraps an LLM client with retry logic and a circuit breaker.
type retryClient struct {
	underlying     Client
	retryConfig    facterrors.RetryConfig
	circuitBreaker *facterrors.CircuitBreaker
	logger         logging.Logger
}

var _ Client = (*retryClient)(nil)

// NewRetryClient wraps an LLM client with retry and circuit breaker logic.
func NewRetryClient(client Client, retryConfig facterrors.RetryConfig, circuitBreaker *facterrors.CircuitBreaker) Client {
	return &retryClient{
		underlying:     client,
		retryConfig:    retryConfig,
		circuitBreaker: circuitBreaker,
		logger:         logging.NewComponentLogger("llm-retry"),
	}
}

// Complete executes LLM completion with retry logic.
func (c *retryClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return facterrors.RetryWithResult(ctx, c.retryConfig, func(ctx context.Context) (*CompletionResponse, error) {
		return facterrors.ExecuteFunc(c.circuitBreaker, ctx, func(ctx context.Context) (*CompletionResponse, error) {
			return c.underlying.Complete(ctx, req)
		})
	}, c.logger)
}

// Model returns the underlying model name.
func (c *retryClient) Model() string {
	return c.underlying.Model()
}
