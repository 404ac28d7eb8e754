package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a scripted Provider for tests. It replays queued
// responses in order and records every request it receives.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockReply
	requests  []CompletionRequest
	fallback  string
}

type mockReply struct {
	content string
	err     error
}

// NewMock creates a mock provider. Calls beyond the queued responses
// return the fallback content.
func NewMock(fallback string) *MockProvider {
	return &MockProvider{fallback: fallback}
}

// Queue appends a scripted response.
func (m *MockProvider) Queue(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockReply{content: content})
	return m
}

// QueueError appends a scripted failure.
func (m *MockProvider) QueueError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockReply{err: err})
	return m
}

// CreateCompletion implements the Provider interface.
func (m *MockProvider) CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, request)

	if len(m.responses) > 0 {
		reply := m.responses[0]
		m.responses = m.responses[1:]
		if reply.err != nil {
			return nil, reply.err
		}
		return m.respond(reply.content), nil
	}

	if m.fallback == "" {
		return nil, fmt.Errorf("mock provider: no scripted response")
	}
	return m.respond(m.fallback), nil
}

func (m *MockProvider) respond(content string) *CompletionResponse {
	return &CompletionResponse{
		Content:      content,
		FinishReason: "stop",
		Usage:        Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}
}

// Requests returns a copy of all recorded requests.
func (m *MockProvider) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or nil if none were made.
func (m *MockProvider) LastRequest() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	return "mock"
}
