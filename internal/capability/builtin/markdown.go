package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"factotum/internal/capability"
	"factotum/internal/logging"
)

// ConvertMarkdownToHTML renders a markdown file to an HTML file next to it.
type ConvertMarkdownToHTML struct {
	logger logging.Logger
	md     goldmark.Markdown
}

func NewConvertMarkdownToHTML(cfg Config) *ConvertMarkdownToHTML {
	return &ConvertMarkdownToHTML{
		logger: cfg.Logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (c *ConvertMarkdownToHTML) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "convert_markdown_to_html",
		Description: "Converts a markdown file to HTML.",
		PathParams:  []string{"file"},
		Rules: []capability.Rule{
			capability.MustRule("file", `([\w./-]+\.(?:md|markdown))`, true, nil, capability.TypeString),
		},
	}
}

func (c *ConvertMarkdownToHTML) Execute(ctx context.Context, args map[string]any) (any, error) {
	path := args["file"].(string)

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown file: %w", err)
	}

	var rendered bytes.Buffer
	if err := c.md.Convert(source, &rendered); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	output := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if err := os.WriteFile(output, rendered.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	c.logger.Info("convert_markdown_to_html: %s -> %s (%d bytes)", path, output, rendered.Len())
	return map[string]any{
		"source": path,
		"output": output,
		"bytes":  rendered.Len(),
	}, nil
}
