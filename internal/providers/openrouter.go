package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	openRouterDefaultModel = "anthropic/claude-3.5-haiku"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration

	RPS        float64       // default 150
	MaxRetries int           // attempts per request, default 3
	RetryDelay time.Duration // base backoff, default 1s
}

// OpenRouterClient implements LLMClient over the OpenRouter chat
// completions endpoint.
type OpenRouterClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	limiter      *RateLimiter

	rps        float64
	maxRetries int
	retryDelay time.Duration
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openRouterDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 150
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &OpenRouterClient{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: cfg.DefaultModel,
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      NewRateLimiter(cfg.RPS),
		rps:          cfg.RPS,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}
}

func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// Model returns the default model.
func (c *OpenRouterClient) Model() string {
	return c.defaultModel
}

// RateLimiterStatus returns the state of the client's rate limiter.
func (c *OpenRouterClient) RateLimiterStatus() RateLimiterStatus {
	return c.limiter.Status()
}

type orRequest struct {
	Model          string     `json:"model"`
	Messages       []Message  `json:"messages"`
	Temperature    float64    `json:"temperature,omitempty"`
	MaxTokens      int        `json:"max_tokens,omitempty"`
	ResponseFormat *orFormat  `json:"response_format,omitempty"`
	Usage          orUsageOpt `json:"usage"`
}

type orFormat struct {
	Type string `json:"type"`
}

type orUsageOpt struct {
	Include bool `json:"include"`
}

type orResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		Cost             float64 `json:"cost"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Chat sends a chat completion request.
func (c *OpenRouterClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	result := &ChatResult{
		Provider:  OpenRouterName,
		Model:     req.Model,
		RequestID: req.RequestID,
	}
	if result.Model == "" {
		result.Model = c.defaultModel
	}
	if result.RequestID == "" {
		result.RequestID = uuid.NewString()
	}

	body := orRequest{
		Model:       result.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Usage:       orUsageOpt{Include: true},
	}
	if req.JSON {
		body.ResponseFormat = &orFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp *orResponse
	err = retry.Do(
		func() error {
			result.Attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			r, err := c.post(ctx, payload)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(10*time.Second),
		retry.MaxJitter(max(c.retryDelay/2, time.Millisecond)),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
	result.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}

	content, err := messageText(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter response %s: %w", resp.ID, err)
	}
	result.Content = content
	if resp.Model != "" {
		result.Model = resp.Model
	}
	result.PromptTokens = resp.Usage.PromptTokens
	result.CompletionTokens = resp.Usage.CompletionTokens
	result.CostUSD = resp.Usage.Cost
	return result, nil
}

// post performs one attempt. Errors wrapped with retry.Unrecoverable stop
// the retry loop.
func (c *OpenRouterClient) post(ctx context.Context, payload []byte) (*orResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", "https://github.com/jackzampolin/cornell")
	req.Header.Set("X-Title", "Cornell")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		rlErr := &RateLimitError{
			Provider:   OpenRouterName,
			Body:       string(respBody),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
		c.limiter.Record429(rlErr.RetryAfter)
		return nil, rlErr
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500:
		return nil, fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, respBody)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, respBody))
	}

	var out orResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if out.Error != nil {
		code := fmt.Sprint(out.Error.Code)
		switch code {
		case "overloaded", "rate_limit_exceeded", "500", "502", "503":
			return nil, fmt.Errorf("OpenRouter API error (%s): %s", code, out.Error.Message)
		}
		return nil, retry.Unrecoverable(fmt.Errorf("OpenRouter API error (%s): %s", code, out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response (model=%s, id=%s)", out.Model, out.ID)
	}
	return &out, nil
}

// messageText reads message content sent either as a string or as an
// array of typed parts, joining the text parts.
func messageText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unsupported message content: %s", raw)
	}
	var b strings.Builder
	for _, p := range parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

var _ LLMClient = (*OpenRouterClient)(nil)
