// Package builtin provides the stock capability catalogue: the named actions
// the dispatcher is allowed to execute on behalf of a task.
package builtin

import (
	"net/http"
	"time"

	"factotum/internal/capability"
	"factotum/internal/config"
	"factotum/internal/logging"
	"factotum/internal/sandbox"
)

// Config carries the shared infrastructure handed to every builtin
// capability. Capabilities never construct their own clients or guards.
type Config struct {
	Guard      *sandbox.Guard
	HTTPClient *http.Client
	Logger     logging.Logger

	// Transcription service settings (OpenAI-compatible audio endpoint).
	TranscribeBaseURL string
	TranscribeAPIKey  string
	TranscribeModel   string

	// MaxResponseBytes caps bodies read from remote services.
	MaxResponseBytes int64

	ScrapeCacheSize int
	ScrapeCacheTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	c.Logger = logging.OrNop(c.Logger)
	if c.TranscribeModel == "" {
		c.TranscribeModel = config.DefaultTranscribeModel
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = config.DefaultHTTPMaxResponse
	}
	if c.ScrapeCacheSize <= 0 {
		c.ScrapeCacheSize = config.DefaultScrapeCacheSize
	}
	if c.ScrapeCacheTTL <= 0 {
		c.ScrapeCacheTTL = config.DefaultScrapeCacheTTL
	}
	return c
}

// All builds the full stock catalogue.
func All(cfg Config) []capability.Capability {
	cfg = cfg.withDefaults()
	return []capability.Capability{
		NewCountSpecificDay(cfg),
		NewFetchDataFromAPI(cfg),
		NewRunSQLQuery(cfg),
		NewScrapeWebsite(cfg),
		NewCompressOrResizeImage(cfg),
		NewTranscribeAudio(cfg),
		NewConvertMarkdownToHTML(cfg),
		NewCloneAndCommitRepo(cfg),
		NewFilterCSV(cfg),
	}
}
