// Package capability defines the static catalogue of named actions the
// dispatcher may execute, together with the declarative rules used to bind
// their parameters from free-form task text.
package capability

import (
	"context"
	"regexp"
)

// ValueType declares how a captured raw value is coerced before binding.
type ValueType int

const (
	// TypeString binds the capture as-is (trimmed).
	TypeString ValueType = iota
	// TypeInt parses the capture as a decimal integer.
	TypeInt
	// TypeDimensions parses a WxH pair like "200x300".
	TypeDimensions
	// TypeKeyValueMap parses comma-separated key=value pairs.
	TypeKeyValueMap
)

// Dimensions is the coerced form of a WxH capture.
type Dimensions struct {
	Width  int
	Height int
}

// Rule binds one parameter from the task text. Patterns run case-insensitive
// against the original text; the first capture group becomes the raw value.
type Rule struct {
	Param    string
	Pattern  *regexp.Regexp
	Required bool
	Default  any
	Type     ValueType
}

// MustRule compiles pattern case-insensitively and panics on error; intended
// for the static capability tables built at process start.
func MustRule(param, pattern string, required bool, def any, valueType ValueType) Rule {
	return Rule{
		Param:    param,
		Pattern:  regexp.MustCompile(`(?i)` + pattern),
		Required: required,
		Default:  def,
		Type:     valueType,
	}
}

// Descriptor is the static schema of one capability.
type Descriptor struct {
	Name        string
	Description string
	// PathParams names the bound parameters that are filesystem paths; the
	// executor routes each through the sandbox guard before invocation.
	PathParams []string
	Rules      []Rule
}

// IsPathParam reports whether the named parameter is path-bearing.
func (d Descriptor) IsPathParam(name string) bool {
	for _, p := range d.PathParams {
		if p == name {
			return true
		}
	}
	return false
}

// Capability is a registered, executable action.
type Capability interface {
	// Execute runs the capability with fully bound arguments and returns the
	// result payload. Path-bearing arguments arrive already resolved to
	// absolute, sandbox-confined paths.
	Execute(ctx context.Context, args map[string]any) (any, error)

	// Descriptor returns the capability's schema.
	Descriptor() Descriptor
}
