package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"factotum/internal/capability"
	facterrors "factotum/internal/errors"
	"factotum/internal/httpclient"
	"factotum/internal/logging"
)

// FetchDataFromAPI performs a GET against a remote endpoint and optionally
// persists the body inside the sandbox.
type FetchDataFromAPI struct {
	client   *http.Client
	logger   logging.Logger
	maxBytes int64
}

func NewFetchDataFromAPI(cfg Config) *FetchDataFromAPI {
	return &FetchDataFromAPI{
		client:   cfg.HTTPClient,
		logger:   cfg.Logger,
		maxBytes: cfg.MaxResponseBytes,
	}
}

func (f *FetchDataFromAPI) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "fetch_data_from_api",
		Description: "Fetches data from an HTTP endpoint, optionally saving the body to a file.",
		PathParams:  []string{"output"},
		Rules: []capability.Rule{
			capability.MustRule("url", `from (https?://[^\s"']+)`, true, nil, capability.TypeString),
			capability.MustRule("output", `(?:save|write) (?:it |the data )?(?:to|into) ([\w./-]+)`, false, nil, capability.TypeString),
		},
	}
}

func (f *FetchDataFromAPI) Execute(ctx context.Context, args map[string]any) (any, error) {
	url := args["url"].(string)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/csv, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &facterrors.TransientError{Err: fmt.Errorf("fetch %s: %w", url, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := httpclient.ReadAllWithLimit(resp.Body, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		if facterrors.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, &facterrors.TransientError{Err: err}
		}
		return nil, &facterrors.PermanentError{Err: err}
	}

	result := map[string]any{
		"url":          url,
		"status":       resp.StatusCode,
		"content_type": resp.Header.Get("Content-Type"),
		"bytes":        len(body),
	}

	// Small JSON bodies are decoded inline so downstream entries (and the
	// caller) see structured data instead of a blob.
	if isJSONContent(resp.Header.Get("Content-Type"), body) && len(body) <= 64<<10 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			result["data"] = decoded
		}
	}

	if output, ok := args["output"].(string); ok {
		if err := os.WriteFile(output, body, 0o644); err != nil {
			return nil, fmt.Errorf("save response: %w", err)
		}
		result["saved_to"] = output
		f.logger.Info("fetch_data_from_api: wrote %d bytes to %s", len(body), output)
	}

	return result, nil
}

func isJSONContent(contentType string, body []byte) bool {
	if strings.Contains(contentType, "json") {
		return true
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
