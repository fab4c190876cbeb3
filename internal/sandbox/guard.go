// Package sandbox confines file-bearing capability parameters to a single
// root directory. Containment is lexical: paths are normalized and compared
// segment-wise, but symbolic links are not chased. That keeps Check pure and
// side-effect-free at the cost of not defending against link-based escape.
package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Guard decides whether a path lies inside the sandbox root. The root is
// fixed at construction and never mutates.
type Guard struct {
	root string
}

// New builds a guard for the given root directory. The root is resolved to
// an absolute, cleaned form once.
func New(root string) (*Guard, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("sandbox root cannot be empty")
	}
	abs, err := filepath.Abs(filepath.Clean(trimmed))
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	return &Guard{root: abs}, nil
}

// Root returns the absolute sandbox root.
func (g *Guard) Root() string {
	return g.root
}

// Check reports whether path normalizes to the root itself or to a location
// under it. Relative paths resolve against the root. Check never errors;
// anything that cannot be normalized is treated as outside.
func (g *Guard) Check(path string) bool {
	_, ok := g.Resolve(path)
	return ok
}

// Resolve returns the absolute, root-confined form of path and whether it is
// inside the sandbox. Containment is decided with filepath.Rel, never a raw
// string prefix, so a sibling like /data-other does not pass for root /data.
func (g *Guard) Resolve(path string) (string, bool) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", false
	}

	candidate := trimmed
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(g.root, candidate)
	}
	abs, err := filepath.Abs(filepath.Clean(candidate))
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return g.root, true
	}
	return filepath.Join(g.root, rel), true
}
