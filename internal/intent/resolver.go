// Package intent delegates task classification to the external model. The
// resolver forwards text and performs no semantic validation of its own; the
// in-process contract is about constraining what the model's output is
// allowed to cause, not what it means.
package intent

import (
	"context"
	"fmt"
	"strings"

	facterrors "factotum/internal/errors"
	"factotum/internal/llm"
	"factotum/internal/logging"
	"factotum/internal/planner"
)

const instructionTemplate = `You translate a task description into function calls.

Available functions (the exhaustive list, one per line):
%s

Respond with zero or more lines of the form
%s<name>
in the order the functions should run. If none of the functions applies,
respond with exactly
%sNone
Output nothing else.`

// Resolver sends task text plus the capability catalogue to the model and
// returns the raw response text.
type Resolver struct {
	client      llm.Client
	instruction string
	logger      logging.Logger
}

// New builds a resolver for the given capability name catalogue.
func New(client llm.Client, capabilityNames []string, logger logging.Logger) *Resolver {
	return &Resolver{
		client:      client,
		instruction: fmt.Sprintf(instructionTemplate, strings.Join(capabilityNames, "\n"), planner.Marker, planner.Marker),
		logger:      logging.OrNop(logger),
	}
}

// Resolve forwards the task text to the model. A transport failure is a
// ResolverError that aborts the whole task. The reply text is returned
// verbatim, blank included; deciding whether anything in it is actionable is
// the planner's job.
func (r *Resolver) Resolve(ctx context.Context, taskText string) (string, error) {
	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: r.instruction},
			{Role: "user", Content: taskText},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", &facterrors.ResolverError{Err: err}
	}

	r.logger.Debug("model response (%d tokens): %s", resp.Usage.TotalTokens, resp.Content)
	return resp.Content, nil
}

// Instruction exposes the fixed system instruction, mainly for tests.
func (r *Resolver) Instruction() string {
	return r.instruction
}
