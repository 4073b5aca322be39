package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
)

// OpenAIClient implements Client using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates an OpenAI-backed client. Options are passed
// through to the SDK; tests use option.WithBaseURL to point the client at an
// httptest server.
func NewOpenAIClient(opts ...option.RequestOption) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params.MaxCompletionTokens = openai.Int(int64(maxTokens))

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, errors.Wrap(err, "openai completion failed")
	}

	if len(resp.Choices) == 0 {
		return Response{}, errors.New("openai returned no choices")
	}

	return Response{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
