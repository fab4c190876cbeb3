package builtin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"factotum/internal/capability"
	facterrors "factotum/internal/errors"
	"factotum/internal/logging"
	"factotum/internal/sandbox"
)

const defaultCommitMessage = "Automated commit"

// CloneAndCommitRepo clones a git repository into the sandbox root, applies
// requested file changes and commits them. It shells out to the git CLI; no
// credentials handling beyond what the ambient git config provides.
type CloneAndCommitRepo struct {
	guard  *sandbox.Guard
	logger logging.Logger
}

func NewCloneAndCommitRepo(cfg Config) *CloneAndCommitRepo {
	return &CloneAndCommitRepo{guard: cfg.Guard, logger: cfg.Logger}
}

func (c *CloneAndCommitRepo) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "clone_and_commit_repo",
		Description: "Clones a git repository into the workspace, applies file changes and commits them.",
		Rules: []capability.Rule{
			capability.MustRule("repo_url", `(?:clone|from) (https?://[\w./~:-]+|git@[\w.:~/-]+)`, true, nil, capability.TypeString),
			capability.MustRule("commit_message", `message ["']([^"']+)["']`, false, defaultCommitMessage, capability.TypeString),
			capability.MustRule("file_changes", `(?:setting|writing|changing) ([^;]+=[^;]+)`, false, nil, capability.TypeKeyValueMap),
		},
	}
}

func (c *CloneAndCommitRepo) Execute(ctx context.Context, args map[string]any) (any, error) {
	repoURL := args["repo_url"].(string)
	message := args["commit_message"].(string)

	target, ok := c.guard.Resolve(repoDirName(repoURL))
	if !ok {
		return nil, &facterrors.AccessDeniedError{Capability: "clone_and_commit_repo", Param: "repo_url"}
	}
	if _, err := os.Stat(target); err == nil {
		return nil, fmt.Errorf("clone target %s already exists", filepath.Base(target))
	}

	if out, err := c.git(ctx, "", "clone", "--depth", "1", repoURL, target); err != nil {
		return nil, fmt.Errorf("git clone: %w: %s", err, out)
	}
	c.logger.Info("clone_and_commit_repo: cloned %s into %s", repoURL, target)

	changed := 0
	if changes, ok := args["file_changes"].(map[string]string); ok {
		for name, content := range changes {
			path, inside := c.guard.Resolve(filepath.Join(filepath.Base(target), name))
			if !inside {
				return nil, &facterrors.AccessDeniedError{Capability: "clone_and_commit_repo", Param: "file_changes"}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("prepare %s: %w", name, err)
			}
			if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", name, err)
			}
			changed++
		}
	}

	if out, err := c.git(ctx, target, "add", "-A"); err != nil {
		return nil, fmt.Errorf("git add: %w: %s", err, out)
	}

	committed := false
	if changed > 0 {
		if out, err := c.git(ctx, target, "commit", "-m", message); err != nil {
			return nil, fmt.Errorf("git commit: %w: %s", err, out)
		}
		committed = true
		c.logger.Info("clone_and_commit_repo: committed %d file(s): %s", changed, message)
	}

	return map[string]any{
		"repo_url":      repoURL,
		"checkout":      target,
		"files_changed": changed,
		"committed":     committed,
		"message":       message,
	}, nil
}

func (c *CloneAndCommitRepo) git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// repoDirName derives the checkout directory from the repository URL:
// https://example.com/org/widget.git -> widget.
func repoDirName(repoURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "repository"
	}
	return trimmed
}
