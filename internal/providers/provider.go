package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// LLMClient sends chat requests to a language model.
type LLMClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name identifies the provider in logs, metrics and errors.
	Name() string
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single chat completion call. Zero values leave the
// provider defaults in place.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int

	// JSON asks the provider for a reply that is one JSON object. The
	// shape of the object is checked by ChatStructured, not the provider.
	JSON bool

	RequestID string
}

// newChat builds a system plus user request.
func newChat(model, system, user string) *ChatRequest {
	return &ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
	}
}

// ChatResult is a completed chat call.
type ChatResult struct {
	Content string

	Provider  string
	Model     string
	RequestID string
	Attempts  int
	Duration  time.Duration

	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
}

// RateLimitError is returned when a provider answers 429.
type RateLimitError struct {
	Provider   string
	Body       string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	msg := e.Provider + " rate limited"
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("%s (retry after %s)", msg, e.RetryAfter)
	}
	return msg
}

// parseRetryAfter reads a Retry-After header in either of its two forms,
// delay seconds or an HTTP date. Unparseable or past values yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
