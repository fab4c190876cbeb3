package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements Client for testing. Responses are returned in
// registration order; Err, when set, takes precedence.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Requests  []CompletionRequest
	index     int
}

var _ Client = (*MockClient)(nil)

// NewMockClient builds a mock that replies with the given contents in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if m.index >= len(m.Responses) {
		return nil, fmt.Errorf("mock client exhausted after %d responses", len(m.Responses))
	}

	content := m.Responses[m.index]
	m.index++
	return &CompletionResponse{
		Content:    content,
		StopReason: "stop",
		Usage:      TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (m *MockClient) Model() string {
	return "mock-model"
}

// LastRequest returns the most recent request, if any.
func (m *MockClient) LastRequest() (CompletionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return CompletionRequest{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}
