package llm

import (
	"strings"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
)

// New creates the appropriate LLM client for the named provider. Supported
// providers are "anthropic" and "openai"; an empty provider defaults to
// anthropic.
func New(provider, apiKey string) (Client, error) {
	switch provider {
	case "anthropic", "":
		return NewAnthropicClient(anthropicoption.WithAPIKey(apiKey)), nil
	case "openai":
		return NewOpenAIClient(openaioption.WithAPIKey(apiKey)), nil
	default:
		return nil, errors.Errorf("unsupported LLM provider: %s (supported: anthropic, openai)", provider)
	}
}

// DetectProvider infers the provider from a model name. Model names starting
// with "claude" belong to Anthropic; "gpt", "o1" and "o3" prefixes belong to
// OpenAI. Anything unrecognized returns an empty string so callers fall back
// to the configured provider.
func DetectProvider(model string) string {
	switch {
	case strings.HasPrefix(model, "claude"):
		return "anthropic"
	case strings.HasPrefix(model, "gpt"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"):
		return "openai"
	default:
		return ""
	}
}

// KeyEnv returns the environment variable holding the API key for the named
// provider.
func KeyEnv(provider string) string {
	if provider == "openai" {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}
