package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	facterrors "factotum/internal/errors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIClientComplete(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "CALL_FUNCTION:run_sql_query"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49},
		})
	})

	client, err := NewOpenAIClient("test-model", Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "run the query"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CALL_FUNCTION:run_sql_query", resp.Content)
	assert.Equal(t, 49, resp.Usage.TotalTokens)
	assert.Equal(t, "test-model", client.Model())
}

func TestOpenAIClientTransientStatus(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, err := NewOpenAIClient("test-model", Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.True(t, facterrors.IsTransient(err))
}

func TestOpenAIClientPermanentStatus(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, err := NewOpenAIClient("test-model", Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.False(t, facterrors.IsTransient(err))
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	client, err := NewOpenAIClient("test-model", Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{})
	assert.ErrorContains(t, err, "no choices")
}

func TestNewOpenAIClientRejectsEmptyModel(t *testing.T) {
	_, err := NewOpenAIClient("  ", Config{})
	assert.Error(t, err)
}

func TestOpenAIClientHonorsConfiguredTimeout(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"late"},"finish_reason":"stop"}]}`))
	})

	client, err := NewOpenAIClient("test-model", Config{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline")
}

func TestRetryClientRetriesTransientFailures(t *testing.T) {
	calls := 0
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	})

	base, err := NewOpenAIClient("test-model", Config{BaseURL: server.URL})
	require.NoError(t, err)

	client := NewRetryClient(base, facterrors.RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   1,
		MaxDelay:    1,
	}, facterrors.NewCircuitBreaker("test-llm", facterrors.DefaultCircuitBreakerConfig()))

	resp, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 2, calls)
}

func TestMockClientScriptedResponses(t *testing.T) {
	mock := NewMockClient("first", "second")

	resp, err := mock.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)

	resp, err = mock.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	_, err = mock.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)

	_, ok := mock.LastRequest()
	assert.True(t, ok)
	assert.Len(t, mock.Requests, 3)
}
