package main

import (
	"fmt"

	"factotum/internal/capability"
	"factotum/internal/capability/builtin"
	"factotum/internal/config"
	"factotum/internal/dispatch"
	facterrors "factotum/internal/errors"
	"factotum/internal/httpclient"
	"factotum/internal/intent"
	"factotum/internal/llm"
	"factotum/internal/logging"
	"factotum/internal/observability"
	"factotum/internal/sandbox"
)

// runtime bundles everything a command needs after wiring.
type runtime struct {
	cfg      config.RuntimeConfig
	pipeline *dispatch.Pipeline
	metrics  *observability.Metrics
	logger   logging.Logger
}

// buildRuntime wires the full pipeline from configuration: sandbox guard,
// capability catalogue, model client (with retries behind a circuit breaker),
// resolver and executor.
func buildRuntime(cfg config.RuntimeConfig) (*runtime, error) {
	logger := logging.NewComponentLogger("factotum")
	metrics := observability.NewMetrics()

	guard, err := sandbox.New(cfg.SandboxRoot)
	if err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}

	// Capability HTTP traffic (fetch, scrape, transcription) shares one
	// breaker-guarded client so a flapping upstream trips open once.
	httpClient := httpclient.NewWithCircuitBreaker(cfg.LLMTimeout(), logging.NewComponentLogger("http"), "capability-http")
	caps := builtin.All(builtin.Config{
		Guard:             guard,
		HTTPClient:        httpClient,
		Logger:            logging.NewComponentLogger("capability"),
		TranscribeBaseURL: cfg.BaseURL,
		TranscribeAPIKey:  cfg.APIKey,
		TranscribeModel:   cfg.TranscribeModel,
		MaxResponseBytes:  cfg.HTTPMaxResponseBytes,
		ScrapeCacheSize:   cfg.ScrapeCacheSize,
		ScrapeCacheTTL:    cfg.ScrapeCacheTTL(),
	})

	registry, err := capability.NewRegistry(caps...)
	if err != nil {
		return nil, fmt.Errorf("capability registry: %w", err)
	}

	client, err := llm.NewOpenAIClient(cfg.LLMModel, llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}

	retryConfig := facterrors.DefaultRetryConfig()
	retryConfig.MaxAttempts = cfg.LLMMaxRetries
	breaker := facterrors.NewCircuitBreaker("intent-model", facterrors.DefaultCircuitBreakerConfig())
	client = llm.NewRetryClient(client, retryConfig, breaker)

	resolver := intent.New(client, registry.Names(), logging.NewComponentLogger("intent"))
	executor := dispatch.NewExecutor(registry, guard, logging.NewComponentLogger("executor"), metrics)
	pipeline := dispatch.NewPipeline(resolver, executor, logging.NewComponentLogger("pipeline"), metrics)

	logger.Info("runtime ready: %d capabilities, sandbox root %s, model %s",
		registry.Len(), cfg.SandboxRoot, cfg.LLMModel)

	return &runtime{cfg: cfg, pipeline: pipeline, metrics: metrics, logger: logger}, nil
}
