package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factotum/internal/capability"
	facterrors "factotum/internal/errors"
)

func TestFetchDataFromAPIExtraction(t *testing.T) {
	cap := NewFetchDataFromAPI(Config{}.withDefaults())
	args, err := capability.Extract(cap.Descriptor(),
		"Fetch data from https://api.example.com/v1/report and save it to report.json")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/report", args["url"])
	assert.Equal(t, "report.json", args["output"])
}

func TestFetchDataFromAPIDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [1, 2, 3]}`))
	}))
	defer server.Close()

	cap := NewFetchDataFromAPI(Config{HTTPClient: server.Client()}.withDefaults())
	payload, err := cap.Execute(context.Background(), map[string]any{"url": server.URL})
	require.NoError(t, err)

	result := payload.(map[string]any)
	assert.Equal(t, http.StatusOK, result["status"])
	data := result["data"].(map[string]any)
	assert.Len(t, data["items"], 3)
}

func TestFetchDataFromAPISavesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "data.csv")
	cap := NewFetchDataFromAPI(Config{HTTPClient: server.Client()}.withDefaults())
	payload, err := cap.Execute(context.Background(), map[string]any{
		"url":    server.URL,
		"output": output,
	})
	require.NoError(t, err)

	assert.Equal(t, output, payload.(map[string]any)["saved_to"])
	saved, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(saved))
}

func TestFetchDataFromAPIServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cap := NewFetchDataFromAPI(Config{HTTPClient: server.Client()}.withDefaults())
	_, err := cap.Execute(context.Background(), map[string]any{"url": server.URL})
	require.Error(t, err)
	assert.True(t, facterrors.IsTransient(err))
}

func TestFetchDataFromAPIClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cap := NewFetchDataFromAPI(Config{HTTPClient: server.Client()}.withDefaults())
	_, err := cap.Execute(context.Background(), map[string]any{"url": server.URL})
	require.Error(t, err)
	assert.False(t, facterrors.IsTransient(err))
}
