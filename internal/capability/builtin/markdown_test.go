package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factotum/internal/capability"
)

func TestConvertMarkdownToHTMLExtraction(t *testing.T) {
	cap := NewConvertMarkdownToHTML(Config{}.withDefaults())
	args, err := capability.Extract(cap.Descriptor(), "Convert notes/report.md to HTML")
	require.NoError(t, err)
	assert.Equal(t, "notes/report.md", args["file"])
}

func TestConvertMarkdownToHTMLRendersGFM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")
	source := "# Title\n\nSome ~~old~~ text.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	cap := NewConvertMarkdownToHTML(Config{}.withDefaults())
	payload, err := cap.Execute(context.Background(), map[string]any{"file": path})
	require.NoError(t, err)

	result := payload.(map[string]any)
	output := result["output"].(string)
	assert.Equal(t, filepath.Join(dir, "report.html"), output)

	rendered, err := os.ReadFile(output)
	require.NoError(t, err)
	html := string(rendered)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<del>old</del>")
	assert.Contains(t, html, "<table>")
}

func TestConvertMarkdownToHTMLMissingFile(t *testing.T) {
	cap := NewConvertMarkdownToHTML(Config{}.withDefaults())
	_, err := cap.Execute(context.Background(), map[string]any{
		"file": filepath.Join(t.TempDir(), "absent.md"),
	})
	require.Error(t, err)
}
