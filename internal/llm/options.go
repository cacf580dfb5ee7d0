package llm

import "time"

// clientConfig holds configuration for an LLM client.
type clientConfig struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
	maxAttempts int
	baseDelay   time.Duration
	callTimeout time.Duration
}

// Option is a functional option for configuring an LLM client.
type Option func(*clientConfig)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the default model name for requests.
// Per-request model settings in ChatRequest take precedence.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the default temperature for requests.
// Per-request temperature settings in ChatRequest take precedence.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = &temp
	}
}

// WithRetry sets the retry budget: maxAttempts total tries and the base
// delay doubled before each retry.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *clientConfig) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

// WithCallTimeout sets the provider-level timeout applied to each attempt.
func WithCallTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.callTimeout = d
	}
}
