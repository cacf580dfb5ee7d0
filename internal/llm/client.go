package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrorMarker prefixes completion failures that are embedded into a
// conversation transcript instead of aborting it. Callers treat a turn whose
// content starts with this marker as a degraded turn, not a fatal condition.
const ErrorMarker = "API Error:"

// Role constants for chat messages sent to the provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single provider-level message.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest is a chat completion request against an OpenAI-compatible API.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Result carries the outcome of an asynchronous completion call.
type Result struct {
	Content string
	Err     error
}

// Client abstracts an OpenAI-compatible LLM API.
type Client interface {
	// Complete sends a chat completion request and returns the response text.
	// Transient failures are retried with exponential backoff; exhaustion
	// yields a *ProviderError.
	Complete(ctx context.Context, req ChatRequest) (string, error)
	// CompleteAsync runs Complete in its own goroutine with identical retry
	// semantics and delivers the result on the returned channel.
	CompleteAsync(ctx context.Context, req ChatRequest) <-chan Result
}

// chatCompleter is the slice of the openai client the OpenAIClient needs.
// Narrowed to an interface so tests can substitute a stub transport.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient implements Client using the OpenAI-compatible API.
type OpenAIClient struct {
	client      chatCompleter
	model       string
	temperature *float64
	maxAttempts int
	baseDelay   time.Duration
	callTimeout time.Duration
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(opts ...Option) *OpenAIClient {
	cfg := &clientConfig{
		baseURL:     "http://localhost:8000/v1",
		apiKey:      "not-needed",
		maxAttempts: 3,
		baseDelay:   time.Second,
		callTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	config := openai.DefaultConfig(cfg.apiKey)
	config.BaseURL = cfg.baseURL

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.model,
		temperature: cfg.temperature,
		maxAttempts: cfg.maxAttempts,
		baseDelay:   cfg.baseDelay,
		callTimeout: cfg.callTimeout,
	}
}

// Complete sends a chat completion request, retrying transient failures with
// exponential backoff (baseDelay * 2^attempt). Non-transient failures fail
// immediately; either way the caller receives a *ProviderError.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	req = c.applyDefaults(req)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			slog.Debug("retrying completion",
				"attempt", attempt+1,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return "", &ProviderError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		content, err := c.callOnce(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !isTransient(err) {
			return "", &ProviderError{Attempts: attempt + 1, Err: err}
		}
	}

	return "", &ProviderError{Attempts: c.maxAttempts, Err: lastErr, Transient: true}
}

// CompleteAsync implements Client.
func (c *OpenAIClient) CompleteAsync(ctx context.Context, req ChatRequest) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		content, err := c.Complete(ctx, req)
		ch <- Result{Content: content, Err: err}
	}()
	return ch
}

func (c *OpenAIClient) callOnce(ctx context.Context, req ChatRequest) (string, error) {
	callCtx := ctx
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// applyDefaults applies client-level defaults to a request where
// the request does not specify its own values.
func (c *OpenAIClient) applyDefaults(req ChatRequest) ChatRequest {
	if req.Model == "" && c.model != "" {
		req.Model = c.model
	}
	if req.Temperature == 0 && c.temperature != nil {
		req.Temperature = *c.temperature
	}
	return req
}

// isTransient reports whether a failure is worth retrying: rate limits,
// upstream 5xx responses, timeouts and connection-level errors.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 0
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// SoftFail renders a completion error as transcript content. A single failed
// call degrades one conversation turn instead of aborting the whole run.
func SoftFail(err error) string {
	return fmt.Sprintf("%s %v", ErrorMarker, err)
}
