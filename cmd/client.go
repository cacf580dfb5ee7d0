package cmd

import (
	"os"

	"github.com/dialectic-ai/dialectic/internal/llm"
)

// newLLMClientFromFlags creates a completion client from common CLI flags,
// falling back to the OPENAI_API_KEY, OPENAI_BASE_URL and DIALECTIC_MODEL
// environment variables for anything not set explicitly.
func newLLMClientFromFlags(endpoint, apiKey, model string) llm.Client {
	var opts []llm.Option

	if endpoint == "" {
		endpoint = os.Getenv("OPENAI_BASE_URL")
	}
	if endpoint != "" {
		opts = append(opts, llm.WithBaseURL(endpoint))
	}

	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey != "" {
		opts = append(opts, llm.WithAPIKey(apiKey))
	}

	if model == "" {
		model = os.Getenv("DIALECTIC_MODEL")
	}
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}

	return llm.NewOpenAIClient(opts...)
}
