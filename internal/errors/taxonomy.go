package errors

import (
	"errors"
	"fmt"
)

// Task-level failures abort the whole pipeline before a plan exists.
// Entry-level failures are recorded as one call result and never stop the
// remaining entries.

// ErrNoActionableFunction reports that the model response contained no
// qualifying CALL_FUNCTION line (or only the None sentinel).
var ErrNoActionableFunction = errors.New("no actionable function in model response")

// ResolverError wraps a transport or format failure while consulting the
// intent model. Task-level: no plan is produced.
type ResolverError struct {
	Err error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("intent resolution failed: %v", e.Err)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

// IsResolverError reports whether err originated in the intent resolver.
func IsResolverError(err error) bool {
	var resolverErr *ResolverError
	return errors.As(err, &resolverErr)
}

// UnknownCapabilityError reports a plan entry naming a capability the
// registry does not know. Entry-level.
type UnknownCapabilityError struct {
	Name string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("capability not found: %s", e.Name)
}

// ExtractionError reports a missing required parameter or a coercion failure
// while binding arguments from the task text. Entry-level.
type ExtractionError struct {
	Capability string
	Param      string
	Reason     string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: cannot bind parameter %q: %s", e.Capability, e.Param, e.Reason)
}

// AccessDeniedError reports a sandbox violation. The capability executor is
// never invoked for the offending entry. The message deliberately omits the
// resolved absolute path.
type AccessDeniedError struct {
	Capability string
	Param      string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s parameter %q resolves outside the sandbox root", e.Capability, e.Param)
}

// IsAccessDenied reports whether err is a sandbox violation.
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}

// CapabilityFault wraps an error or recovered panic raised inside a
// capability executor. Entry-level.
type CapabilityFault struct {
	Capability string
	Cause      error
}

func (e *CapabilityFault) Error() string {
	return fmt.Sprintf("capability %s failed: %v", e.Capability, e.Cause)
}

func (e *CapabilityFault) Unwrap() error {
	return e.Cause
}
