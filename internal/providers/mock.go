package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

const MockClientName = "mock"

// MockClient is an in-memory LLMClient for tests. Each call replies with
// the next entry of Responses (the last one repeats), otherwise with
// ResponseJSON for JSON requests, otherwise with ResponseText.
type MockClient struct {
	ResponseText string
	ResponseJSON json.RawMessage
	Responses    []string

	// Err, when set, fails every call.
	Err error

	mu       sync.Mutex
	requests []ChatRequest
}

// NewMockClient returns a mock answering "mock response".
func NewMockClient() *MockClient {
	return &MockClient{ResponseText: "mock response"}
}

func (c *MockClient) Name() string {
	return MockClientName
}

// Chat records req and returns the configured reply. Token counts are
// estimated at four characters per token.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	c.mu.Lock()
	rec := *req
	rec.Messages = append([]Message(nil), req.Messages...)
	c.requests = append(c.requests, rec)
	n := len(c.requests)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}

	var content string
	switch {
	case len(c.Responses) > 0:
		content = c.Responses[min(n, len(c.Responses))-1]
	case req.JSON && len(c.ResponseJSON) > 0:
		content = string(c.ResponseJSON)
	default:
		content = c.ResponseText
	}

	var promptChars int
	for _, m := range req.Messages {
		promptChars += len(m.Content)
	}
	return &ChatResult{
		Content:          content,
		Provider:         MockClientName,
		Model:            req.Model,
		RequestID:        fmt.Sprintf("mock-%d", n),
		Attempts:         1,
		PromptTokens:     promptChars / 4,
		CompletionTokens: len(content) / 4,
	}, nil
}

// RequestCount returns the number of calls so far.
func (c *MockClient) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Requests returns copies of the requests received so far.
func (c *MockClient) Requests() []ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatRequest(nil), c.requests...)
}

var _ LLMClient = (*MockClient)(nil)
