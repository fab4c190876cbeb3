package builtin

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"factotum/internal/capability"
	facterrors "factotum/internal/errors"
	"factotum/internal/httpclient"
	"factotum/internal/logging"
)

const maxScrapeElements = 200

type scrapeResult struct {
	Title    string   `json:"title"`
	Elements []string `json:"elements"`
	Links    []string `json:"links,omitempty"`
}

// ScrapeWebsite fetches a page and extracts text by CSS selector. Results
// are cached per url+selector with a TTL so repeated plans do not hammer the
// same site.
type ScrapeWebsite struct {
	client   *http.Client
	logger   logging.Logger
	maxBytes int64
	cache    *expirable.LRU[string, scrapeResult]
}

func NewScrapeWebsite(cfg Config) *ScrapeWebsite {
	return &ScrapeWebsite{
		client:   cfg.HTTPClient,
		logger:   cfg.Logger,
		maxBytes: cfg.MaxResponseBytes,
		cache:    expirable.NewLRU[string, scrapeResult](cfg.ScrapeCacheSize, nil, cfg.ScrapeCacheTTL),
	}
}

func (s *ScrapeWebsite) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "scrape_website",
		Description: "Fetches a web page and extracts text content, optionally by CSS selector.",
		Rules: []capability.Rule{
			capability.MustRule("url", `(?:scrape|from) (https?://[^\s"']+)`, true, nil, capability.TypeString),
			capability.MustRule("selector", `elements? matching ["']([^"']+)["']`, false, "p", capability.TypeString),
		},
	}
}

func (s *ScrapeWebsite) Execute(ctx context.Context, args map[string]any) (any, error) {
	url := args["url"].(string)
	selector := args["selector"].(string)

	cacheKey := url + "\x00" + selector
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.logger.Debug("scrape_website: cache hit for %s", url)
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "factotum/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &facterrors.TransientError{Err: fmt.Errorf("fetch %s: %w", url, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		if facterrors.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, &facterrors.TransientError{Err: err}
		}
		return nil, &facterrors.PermanentError{Err: err}
	}

	body, err := httpclient.ReadAllWithLimit(resp.Body, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	result := scrapeResult{Title: strings.TrimSpace(doc.Find("title").First().Text())}
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			result.Elements = append(result.Elements, text)
		}
		return len(result.Elements) < maxScrapeElements
	})
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href, ok := sel.Attr("href"); ok && strings.HasPrefix(href, "http") {
			result.Links = append(result.Links, href)
		}
		return len(result.Links) < maxScrapeElements
	})

	s.cache.Add(cacheKey, result)
	s.logger.Info("scrape_website: extracted %d elements from %s", len(result.Elements), url)
	return result, nil
}
