// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/dialectic-ai/dialectic/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test
// packages. Safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	// Responses maps a substring of the last user message to a canned
	// response. The first matching entry wins.
	Responses map[string]string

	// DefaultResponse is returned when no entry in Responses matches.
	DefaultResponse string

	// Err, when set, is returned from every call instead of a response.
	Err error

	// Calls tracks the number of Complete invocations.
	Calls int

	// Requests stores every received request for inspection.
	Requests []llm.ChatRequest
}

func (m *MockLLMClient) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return "", m.Err
	}

	if len(req.Messages) > 0 {
		last := req.Messages[len(req.Messages)-1].Content
		for key, resp := range m.Responses {
			if key != "" && strings.Contains(last, key) {
				return resp, nil
			}
		}
	}

	if m.DefaultResponse != "" {
		return m.DefaultResponse, nil
	}
	return "mock response", nil
}

func (m *MockLLMClient) CompleteAsync(ctx context.Context, req llm.ChatRequest) <-chan llm.Result {
	ch := make(chan llm.Result, 1)
	go func() {
		defer close(ch)
		content, err := m.Complete(ctx, req)
		ch <- llm.Result{Content: content, Err: err}
	}()
	return ch
}
