package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factotum/internal/capability"
)

const samplePage = `<html><head><title>Sample Page</title></head><body>
<h2>First heading</h2>
<h2>Second heading</h2>
<p>Intro paragraph.</p>
<a href="https://example.com/next">next</a>
<a href="/relative">relative</a>
</body></html>`

func TestScrapeWebsiteExtraction(t *testing.T) {
	cap := NewScrapeWebsite(Config{}.withDefaults())
	args, err := capability.Extract(cap.Descriptor(),
		`Scrape https://example.com/news for elements matching "h2"`)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/news", args["url"])
	assert.Equal(t, "h2", args["selector"])
}

func TestScrapeWebsiteDefaultSelector(t *testing.T) {
	cap := NewScrapeWebsite(Config{}.withDefaults())
	args, err := capability.Extract(cap.Descriptor(), "Scrape https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "p", args["selector"])
}

func TestScrapeWebsiteExtractsSelectedElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	cap := NewScrapeWebsite(Config{HTTPClient: server.Client()}.withDefaults())
	payload, err := cap.Execute(context.Background(), map[string]any{
		"url":      server.URL,
		"selector": "h2",
	})
	require.NoError(t, err)

	result := payload.(scrapeResult)
	assert.Equal(t, "Sample Page", result.Title)
	assert.Equal(t, []string{"First heading", "Second heading"}, result.Elements)
	assert.Equal(t, []string{"https://example.com/next"}, result.Links)
}

func TestScrapeWebsiteCachesByURLAndSelector(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	cap := NewScrapeWebsite(Config{HTTPClient: server.Client()}.withDefaults())
	args := map[string]any{"url": server.URL, "selector": "h2"}

	_, err := cap.Execute(context.Background(), args)
	require.NoError(t, err)
	_, err = cap.Execute(context.Background(), args)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load(), "second identical scrape should be served from cache")

	_, err = cap.Execute(context.Background(), map[string]any{"url": server.URL, "selector": "p"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load(), "different selector is a different cache entry")
}

func TestScrapeWebsiteNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	cap := NewScrapeWebsite(Config{HTTPClient: server.Client()}.withDefaults())
	_, err := cap.Execute(context.Background(), map[string]any{
		"url":      server.URL,
		"selector": "p",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
