package dispatch

import (
	"context"
	"errors"
	"time"

	facterrors "factotum/internal/errors"
	"factotum/internal/intent"
	"factotum/internal/logging"
	"factotum/internal/observability"
	"factotum/internal/planner"
)

// Pipeline wires resolver, planner and executor into the synchronous task
// flow: task text -> raw model text -> ordered names -> executed plan ->
// response. Concurrent tasks run independent pipelines sharing only the
// read-only registry and guard underneath.
type Pipeline struct {
	resolver *intent.Resolver
	executor *Executor
	logger   logging.Logger
	metrics  *observability.Metrics
}

// NewPipeline assembles the task pipeline.
func NewPipeline(resolver *intent.Resolver, executor *Executor, logger logging.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		executor: executor,
		logger:   logging.OrNop(logger),
		metrics:  metrics,
	}
}

// Submit processes one task end to end. Task-level failures (resolver
// transport errors, no actionable function) return an error and no result;
// entry-level failures are embedded in the returned response.
func (p *Pipeline) Submit(ctx context.Context, taskText string) (Response, error) {
	p.logger.Info("task received (%d bytes)", len(taskText))

	started := time.Now()
	raw, err := p.resolver.Resolve(ctx, taskText)
	p.metrics.ObserveResolveDuration(time.Since(started))
	if err != nil {
		p.metrics.ObserveTask("resolver_error")
		return Response{}, err
	}

	plan, err := planner.Plan(raw)
	if err != nil {
		p.metrics.ObserveTask("no_action")
		return Response{}, err
	}
	p.logger.Info("plan resolved: %v", plan)

	result := p.executor.Run(ctx, plan, taskText)
	p.metrics.ObserveTask(string(result.Status))
	return Aggregate(result), nil
}

// IsTaskLevelError reports whether err belongs to the task-level taxonomy
// (resolver failure or empty plan) rather than to a single entry.
func IsTaskLevelError(err error) bool {
	return facterrors.IsResolverError(err) || errors.Is(err, facterrors.ErrNoActionableFunction)
}
