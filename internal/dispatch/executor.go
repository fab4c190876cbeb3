package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"factotum/internal/capability"
	facterrors "factotum/internal/errors"
	"factotum/internal/logging"
	"factotum/internal/observability"
	"factotum/internal/sandbox"
)

// Executor runs ordered plans. It holds only process-wide read-only state
// (registry, guard); all per-task state lives on the stack of Run.
type Executor struct {
	registry *capability.Registry
	guard    *sandbox.Guard
	logger   logging.Logger
	metrics  *observability.Metrics
}

// NewExecutor builds an executor over the given registry and sandbox guard.
func NewExecutor(registry *capability.Registry, guard *sandbox.Guard, logger logging.Logger, metrics *observability.Metrics) *Executor {
	return &Executor{
		registry: registry,
		guard:    guard,
		logger:   logging.OrNop(logger),
		metrics:  metrics,
	}
}

// Run executes the plan strictly in order, synchronously. Ordering is a
// correctness requirement: entry i's effects are fully committed before
// entry i+1 starts, which is what makes clone-then-commit style plans work.
// A single entry's failure never aborts later entries.
func (e *Executor) Run(ctx context.Context, plan []string, taskText string) TaskResult {
	result := TaskResult{
		TaskID:  uuid.NewString(),
		Results: make([]CallResult, 0, len(plan)),
	}

	succeeded := 0
	denied := false

	for _, name := range plan {
		entry := e.runEntry(ctx, name, taskText)
		if entry.Status == StatusSuccess {
			succeeded++
		} else if facterrors.IsAccessDenied(entry.Err()) {
			denied = true
		}
		e.metrics.ObserveCapability(name, string(entry.Status))
		result.Results = append(result.Results, entry)
	}

	// Overall success requires at least one successful entry and no sandbox
	// breach attempt. An all-error plan is still a well-formed result.
	if succeeded > 0 && !denied {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusError
	}
	return result
}

func (e *Executor) runEntry(ctx context.Context, name, taskText string) CallResult {
	cap, ok := e.registry.Lookup(name)
	if !ok {
		err := &facterrors.UnknownCapabilityError{Name: name}
		e.logger.Warn("plan entry rejected: %v", err)
		return errorResult(name, err)
	}
	desc := cap.Descriptor()

	args, err := capability.Extract(desc, taskText)
	if err != nil {
		e.logger.Warn("parameter extraction failed: %v", err)
		return errorResult(name, err)
	}

	// Every path-bearing parameter passes the guard before the executor is
	// invoked; a denial short-circuits the entry.
	for _, param := range desc.PathParams {
		raw, present := args[param]
		if !present {
			continue
		}
		rawPath, isString := raw.(string)
		if !isString {
			continue
		}
		resolved, inside := e.guard.Resolve(rawPath)
		if !inside {
			e.metrics.ObserveAccessDenied()
			deniedErr := &facterrors.AccessDeniedError{Capability: name, Param: param}
			e.logger.Warn("sandbox denial: %v", deniedErr)
			return errorResult(name, deniedErr)
		}
		args[param] = resolved
	}

	payload, err := e.invoke(ctx, cap, name, args)
	if err != nil {
		e.logger.Warn("capability %s failed: %v", name, err)
		return errorResult(name, err)
	}

	e.logger.Info("capability %s completed", name)
	return CallResult{Name: name, Status: StatusSuccess, Payload: payload}
}

// invoke runs the capability executor inside a fault boundary: a panic in an
// external capability becomes a CapabilityFault on this entry, and the
// remaining entries still run.
func (e *Executor) invoke(ctx context.Context, cap capability.Capability, name string, args map[string]any) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = &facterrors.CapabilityFault{Capability: name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	payload, err = cap.Execute(ctx, args)
	if err != nil {
		return nil, &facterrors.CapabilityFault{Capability: name, Cause: err}
	}
	return payload, nil
}

func errorResult(name string, err error) CallResult {
	return CallResult{
		Name:    name,
		Status:  StatusError,
		Message: err.Error(),
		err:     err,
	}
}
