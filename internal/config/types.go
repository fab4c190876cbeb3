package config

import "time"

// ValueSource describes where a configuration value originated from.
type ValueSource string

const (
	SourceDefault  ValueSource = "default"
	SourceFile     ValueSource = "file"
	SourceEnv      ValueSource = "environment"
	SourceOverride ValueSource = "override"
)

const (
	DefaultLLMProvider     = "openai"
	DefaultLLMModel        = "gpt-4o-mini"
	DefaultLLMBaseURL      = "https://api.openai.com/v1"
	DefaultTranscribeModel = "whisper-1"
	DefaultSandboxRoot     = "/data"
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8090
	DefaultLLMTimeout      = 120 * time.Second
	DefaultMaxRetries      = 3
	DefaultMaxConcurrent   = 8
	DefaultHTTPMaxResponse = 1 << 20
	DefaultScrapeCacheSize = 256
	DefaultScrapeCacheTTL  = 15 * time.Minute
)

// RuntimeConfig captures user-configurable settings shared across binaries.
// It is built once at process start and injected read-only into every
// component; nothing mutates it afterwards.
type RuntimeConfig struct {
	// Sandbox
	SandboxRoot string `json:"sandbox_root" yaml:"sandbox_root"`

	// Intent model
	LLMProvider       string `json:"llm_provider" yaml:"llm_provider"`
	LLMModel          string `json:"llm_model" yaml:"llm_model"`
	APIKey            string `json:"api_key" yaml:"api_key"`
	BaseURL           string `json:"base_url" yaml:"base_url"`
	LLMTimeoutSeconds int    `json:"llm_timeout_seconds" yaml:"llm_timeout_seconds"`
	LLMMaxRetries     int    `json:"llm_max_retries" yaml:"llm_max_retries"`
	TranscribeModel   string `json:"transcribe_model" yaml:"transcribe_model"`

	// HTTP front end
	Host           string   `json:"host" yaml:"host"`
	Port           int      `json:"port" yaml:"port"`
	APIToken       string   `json:"api_token" yaml:"api_token"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// Limits
	MaxConcurrentTasks    int   `json:"max_concurrent_tasks" yaml:"max_concurrent_tasks"`
	HTTPMaxResponseBytes  int64 `json:"http_max_response_bytes" yaml:"http_max_response_bytes"`
	ScrapeCacheSize       int   `json:"scrape_cache_size" yaml:"scrape_cache_size"`
	ScrapeCacheTTLSeconds int   `json:"scrape_cache_ttl_seconds" yaml:"scrape_cache_ttl_seconds"`

	Verbose bool `json:"verbose" yaml:"verbose"`
}

// LLMTimeout returns the configured model timeout as a duration.
func (c RuntimeConfig) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return DefaultLLMTimeout
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// ScrapeCacheTTL returns the scrape cache TTL as a duration.
func (c RuntimeConfig) ScrapeCacheTTL() time.Duration {
	if c.ScrapeCacheTTLSeconds <= 0 {
		return DefaultScrapeCacheTTL
	}
	return time.Duration(c.ScrapeCacheTTLSeconds) * time.Second
}

// Metadata records value provenance for diagnostics.
type Metadata struct {
	sources  map[string]ValueSource
	loadedAt time.Time
}

// Source returns the origin of a named field, defaulting to SourceDefault.
func (m Metadata) Source(field string) ValueSource {
	if src, ok := m.sources[field]; ok {
		return src
	}
	return SourceDefault
}

// LoadedAt returns when the configuration was assembled.
func (m Metadata) LoadedAt() time.Time {
	return m.loadedAt
}
