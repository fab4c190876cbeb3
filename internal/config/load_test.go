package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func noFile(string) ([]byte, error) { return nil, os.ErrNotExist }

func fakeHome() (string, error) { return "/home/test", nil }

func TestLoadDefaults(t *testing.T) {
	cfg, meta, err := Load(WithEnv(noEnv), WithFileReader(noFile), WithHomeDir(fakeHome))
	require.NoError(t, err)

	assert.Equal(t, DefaultSandboxRoot, cfg.SandboxRoot)
	assert.Equal(t, DefaultLLMModel, cfg.LLMModel)
	assert.Equal(t, DefaultLLMBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, SourceDefault, meta.Source("sandbox_root"))
}

func TestLoadFileLayer(t *testing.T) {
	file := []byte("sandbox_root: /srv/tasks\nllm_model: gpt-4o\nport: 9999\n")
	cfg, meta, err := Load(
		WithEnv(noEnv),
		WithHomeDir(fakeHome),
		WithFileReader(func(string) ([]byte, error) { return file, nil }),
	)
	require.NoError(t, err)

	assert.Equal(t, "/srv/tasks", cfg.SandboxRoot)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, SourceFile, meta.Source("llm_model"))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	file := []byte("llm_model: from-file\n")
	env := map[string]string{
		"FACTOTUM_LLM_MODEL": "from-env",
		"FACTOTUM_ROOT":      "/env/root",
		"FACTOTUM_VERBOSE":   "true",
	}
	cfg, meta, err := Load(
		WithHomeDir(fakeHome),
		WithFileReader(func(string) ([]byte, error) { return file, nil }),
		WithEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLMModel)
	assert.Equal(t, "/env/root", cfg.SandboxRoot)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, SourceEnv, meta.Source("llm_model"))
}

func TestLoadOverridesWinLast(t *testing.T) {
	cfg, meta, err := Load(
		WithEnv(noEnv), WithFileReader(noFile), WithHomeDir(fakeHome),
		WithOverrides(func(c *RuntimeConfig) {
			c.SandboxRoot = "/cli/root"
			c.Port = 7777
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "/cli/root", cfg.SandboxRoot)
	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, SourceOverride, meta.Source("sandbox_root"))
}

func TestLoadNormalizesRootAndBaseURL(t *testing.T) {
	cfg, _, err := Load(
		WithEnv(noEnv), WithFileReader(noFile), WithHomeDir(fakeHome),
		WithOverrides(func(c *RuntimeConfig) {
			c.SandboxRoot = "/data/../data/tasks/"
			c.BaseURL = "https://api.example.com/v1/"
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "/data/tasks", cfg.SandboxRoot)
	assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
}

func TestLoadRejectsExplicitMissingFile(t *testing.T) {
	_, _, err := Load(
		WithEnv(noEnv), WithHomeDir(fakeHome),
		WithConfigPath("/nonexistent/config.yaml"),
		WithFileReader(func(string) ([]byte, error) { return nil, os.ErrNotExist }),
	)
	assert.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	_, _, err := Load(
		WithEnv(noEnv), WithFileReader(noFile), WithHomeDir(fakeHome),
		WithOverrides(func(c *RuntimeConfig) { c.Port = -1 }),
	)
	assert.Error(t, err)
}
