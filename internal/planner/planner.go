// Package planner extracts an ordered capability plan from raw model output.
//
// The CALL_FUNCTION free-text protocol is brittle by nature: models emit
// explanations, markdown fences, or hallucinated lines despite instructions.
// All tolerance for that lives here, behind one contract, and every response
// is treated as untrusted input. Nothing reaches a registry lookup without
// passing this parser.
package planner

import (
	"strings"

	facterrors "factotum/internal/errors"
)

// Marker is the case-sensitive line prefix that announces one capability
// invocation.
const Marker = "CALL_FUNCTION:"

// SentinelNone is the reserved name denoting "no action applies". It is
// filtered out before any registry lookup and never names a capability.
const SentinelNone = "None"

// Scan returns every candidate name from qualifying lines, in document
// order, including the None sentinel. A line qualifies only if, after
// trimming, it starts with the literal marker; everything after the marker,
// trimmed, is the candidate name. Non-qualifying lines are ignored.
func Scan(rawModelText string) []string {
	var names []string
	for _, line := range strings.Split(rawModelText, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, Marker) {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, Marker))
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Plan parses the model response into an ordered capability plan. The None
// sentinel is removed; an empty plan surfaces as ErrNoActionableFunction,
// never as a silent no-op.
func Plan(rawModelText string) ([]string, error) {
	var plan []string
	for _, name := range Scan(rawModelText) {
		if name == SentinelNone {
			continue
		}
		plan = append(plan, name)
	}
	if len(plan) == 0 {
		return nil, facterrors.ErrNoActionableFunction
	}
	return plan, nil
}
