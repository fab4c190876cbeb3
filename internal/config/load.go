package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvLookup abstracts environment access so tests can inject fixtures.
type EnvLookup func(key string) (string, bool)

// DefaultEnvLookup reads from the process environment.
func DefaultEnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

type loadOptions struct {
	envLookup  EnvLookup
	readFile   func(string) ([]byte, error)
	homeDir    func() (string, error)
	configPath string
	overrides  func(*RuntimeConfig)
}

// Option customizes Load behavior.
type Option func(*loadOptions)

// WithEnv injects an environment lookup.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) { o.envLookup = lookup }
}

// WithFileReader injects a file reader.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(o *loadOptions) { o.readFile = read }
}

// WithHomeDir injects a home directory resolver.
func WithHomeDir(home func() (string, error)) Option {
	return func(o *loadOptions) { o.homeDir = home }
}

// WithConfigPath points Load at an explicit config file.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) { o.configPath = path }
}

// WithOverrides applies caller overrides after file and env layers.
func WithOverrides(apply func(*RuntimeConfig)) Option {
	return func(o *loadOptions) { o.overrides = apply }
}

// Load assembles the runtime configuration: defaults, then the optional yaml
// file, then FACTOTUM_* environment variables, then caller overrides.
func Load(opts ...Option) (RuntimeConfig, Metadata, error) {
	options := loadOptions{
		envLookup: DefaultEnvLookup,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}

	meta := Metadata{sources: map[string]ValueSource{}, loadedAt: time.Now()}

	cfg := RuntimeConfig{
		SandboxRoot:           DefaultSandboxRoot,
		LLMProvider:           DefaultLLMProvider,
		LLMModel:              DefaultLLMModel,
		BaseURL:               DefaultLLMBaseURL,
		LLMTimeoutSeconds:     int(DefaultLLMTimeout.Seconds()),
		LLMMaxRetries:         DefaultMaxRetries,
		TranscribeModel:       DefaultTranscribeModel,
		Host:                  DefaultHost,
		Port:                  DefaultPort,
		MaxConcurrentTasks:    DefaultMaxConcurrent,
		HTTPMaxResponseBytes:  DefaultHTTPMaxResponse,
		ScrapeCacheSize:       DefaultScrapeCacheSize,
		ScrapeCacheTTLSeconds: int(DefaultScrapeCacheTTL.Seconds()),
	}

	if err := applyFile(&cfg, &meta, options); err != nil {
		return RuntimeConfig{}, Metadata{}, err
	}
	applyEnv(&cfg, &meta, options.envLookup)
	if options.overrides != nil {
		before := cfg
		options.overrides(&cfg)
		markOverrides(&meta, before, cfg)
	}

	normalize(&cfg)
	if err := validate(cfg); err != nil {
		return RuntimeConfig{}, Metadata{}, err
	}
	return cfg, meta, nil
}

func applyFile(cfg *RuntimeConfig, meta *Metadata, options loadOptions) error {
	path := options.configPath
	if path == "" {
		home, err := options.homeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".factotum", "config.yaml")
	}

	data, err := options.readFile(path)
	if err != nil {
		if options.configPath != "" {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}

	var fileCfg RuntimeConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	mergeNonZero(cfg, fileCfg, meta, SourceFile)
	return nil
}

func mergeNonZero(cfg *RuntimeConfig, src RuntimeConfig, meta *Metadata, source ValueSource) {
	setString := func(field string, dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
			meta.sources[field] = source
		}
	}
	setInt := func(field string, dst *int, v int) {
		if v != 0 {
			*dst = v
			meta.sources[field] = source
		}
	}

	setString("sandbox_root", &cfg.SandboxRoot, src.SandboxRoot)
	setString("llm_provider", &cfg.LLMProvider, src.LLMProvider)
	setString("llm_model", &cfg.LLMModel, src.LLMModel)
	setString("api_key", &cfg.APIKey, src.APIKey)
	setString("base_url", &cfg.BaseURL, src.BaseURL)
	setString("transcribe_model", &cfg.TranscribeModel, src.TranscribeModel)
	setString("host", &cfg.Host, src.Host)
	setString("api_token", &cfg.APIToken, src.APIToken)
	setInt("port", &cfg.Port, src.Port)
	setInt("llm_timeout_seconds", &cfg.LLMTimeoutSeconds, src.LLMTimeoutSeconds)
	setInt("llm_max_retries", &cfg.LLMMaxRetries, src.LLMMaxRetries)
	setInt("max_concurrent_tasks", &cfg.MaxConcurrentTasks, src.MaxConcurrentTasks)
	setInt("scrape_cache_size", &cfg.ScrapeCacheSize, src.ScrapeCacheSize)
	setInt("scrape_cache_ttl_seconds", &cfg.ScrapeCacheTTLSeconds, src.ScrapeCacheTTLSeconds)
	if src.HTTPMaxResponseBytes != 0 {
		cfg.HTTPMaxResponseBytes = src.HTTPMaxResponseBytes
		meta.sources["http_max_response_bytes"] = source
	}
	if len(src.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = src.AllowedOrigins
		meta.sources["allowed_origins"] = source
	}
	if src.Verbose {
		cfg.Verbose = true
		meta.sources["verbose"] = source
	}
}

func applyEnv(cfg *RuntimeConfig, meta *Metadata, lookup EnvLookup) {
	if lookup == nil {
		return
	}

	envString := func(key, field string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			meta.sources[field] = SourceEnv
		}
	}
	envInt := func(key, field string, dst *int) {
		if v, ok := lookup(key); ok {
			if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
				*dst = parsed
				meta.sources[field] = SourceEnv
			}
		}
	}

	envString("FACTOTUM_ROOT", "sandbox_root", &cfg.SandboxRoot)
	envString("FACTOTUM_LLM_PROVIDER", "llm_provider", &cfg.LLMProvider)
	envString("FACTOTUM_LLM_MODEL", "llm_model", &cfg.LLMModel)
	envString("FACTOTUM_API_KEY", "api_key", &cfg.APIKey)
	envString("FACTOTUM_BASE_URL", "base_url", &cfg.BaseURL)
	envString("FACTOTUM_TRANSCRIBE_MODEL", "transcribe_model", &cfg.TranscribeModel)
	envString("FACTOTUM_HOST", "host", &cfg.Host)
	envString("FACTOTUM_API_TOKEN", "api_token", &cfg.APIToken)
	envInt("FACTOTUM_PORT", "port", &cfg.Port)
	envInt("FACTOTUM_LLM_TIMEOUT_SECONDS", "llm_timeout_seconds", &cfg.LLMTimeoutSeconds)
	envInt("FACTOTUM_LLM_MAX_RETRIES", "llm_max_retries", &cfg.LLMMaxRetries)
	envInt("FACTOTUM_MAX_CONCURRENT_TASKS", "max_concurrent_tasks", &cfg.MaxConcurrentTasks)

	if v, ok := lookup("FACTOTUM_VERBOSE"); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Verbose = parsed
			meta.sources["verbose"] = SourceEnv
		}
	}
	if v, ok := lookup("FACTOTUM_ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.AllowedOrigins = origins
		meta.sources["allowed_origins"] = SourceEnv
	}
}

func markOverrides(meta *Metadata, before, after RuntimeConfig) {
	if before.SandboxRoot != after.SandboxRoot {
		meta.sources["sandbox_root"] = SourceOverride
	}
	if before.LLMModel != after.LLMModel {
		meta.sources["llm_model"] = SourceOverride
	}
	if before.APIKey != after.APIKey {
		meta.sources["api_key"] = SourceOverride
	}
	if before.BaseURL != after.BaseURL {
		meta.sources["base_url"] = SourceOverride
	}
	if before.Host != after.Host {
		meta.sources["host"] = SourceOverride
	}
	if before.Port != after.Port {
		meta.sources["port"] = SourceOverride
	}
	if before.Verbose != after.Verbose {
		meta.sources["verbose"] = SourceOverride
	}
}

func normalize(cfg *RuntimeConfig) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.SandboxRoot = strings.TrimSpace(cfg.SandboxRoot)
	if !filepath.IsAbs(cfg.SandboxRoot) {
		if abs, err := filepath.Abs(cfg.SandboxRoot); err == nil {
			cfg.SandboxRoot = abs
		}
	}
	cfg.SandboxRoot = filepath.Clean(cfg.SandboxRoot)
	if cfg.MaxConcurrentTasks <= 0 {
		cfg.MaxConcurrentTasks = DefaultMaxConcurrent
	}
}

func validate(cfg RuntimeConfig) error {
	if cfg.SandboxRoot == "" {
		return fmt.Errorf("sandbox_root must not be empty")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	return nil
}
