package llm

import "context"

type (
	// Client is a provider-agnostic completion client.
	Client interface {
		// Complete sends a single prompt and returns the model's text reply.
		Complete(ctx context.Context, req Request) (Response, error)
	}

	// Request describes one completion call.
	Request struct {
		// Model is the provider-specific model identifier
		Model string

		// System is the system instruction (optional)
		System string

		// Prompt is the user message content
		Prompt string

		// MaxTokens caps the model output; zero lets the client default it
		MaxTokens int

		// Temperature is the sampling temperature; zero means provider default
		Temperature float64
	}

	// Response is the model's reply with token accounting.
	Response struct {
		// Text is the concatenated text content of the reply
		Text string

		// InputTokens is the prompt token count reported by the provider
		InputTokens int

		// OutputTokens is the completion token count reported by the provider
		OutputTokens int
	}
)

// defaultMaxTokens is used when a request doesn't set MaxTokens. Category
// proposals and classification batches both fit comfortably under this.
const defaultMaxTokens = 4096
