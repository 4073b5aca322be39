package llm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v3/option"
	. "github.com/pseudomuto/starkeeper/pkg/llm"
	"github.com/stretchr/testify/require"
)

func TestAnthropicComplete(t *testing.T) {
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &capturedBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "{\"categories\": []}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 120, "output_tokens": 8}
		}`)
	}))
	defer server.Close()

	client := NewAnthropicClient(
		anthropicoption.WithBaseURL(server.URL),
		anthropicoption.WithAPIKey("test-key"),
	)

	resp, err := client.Complete(context.Background(), Request{
		Model:       "claude-sonnet-4-20250514",
		System:      "You organize repositories.",
		Prompt:      "propose categories",
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	require.Equal(t, `{"categories": []}`, resp.Text)
	require.Equal(t, 120, resp.InputTokens)
	require.Equal(t, 8, resp.OutputTokens)

	require.Equal(t, "claude-sonnet-4-20250514", capturedBody["model"])
	require.EqualValues(t, 1024, capturedBody["max_tokens"])
	require.InDelta(t, 0.2, capturedBody["temperature"], 0.001)

	system, ok := capturedBody["system"].([]any)
	require.True(t, ok, "system must be sent as blocks")
	require.Len(t, system, 1)
}

func TestOpenAIComplete(t *testing.T) {
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &capturedBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "[]"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 90, "completion_tokens": 2, "total_tokens": 92}
		}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(
		openaioption.WithBaseURL(server.URL),
		openaioption.WithAPIKey("test-key"),
	)

	resp, err := client.Complete(context.Background(), Request{
		Model:  "gpt-4o-mini",
		System: "You organize repositories.",
		Prompt: "classify batch",
	})
	require.NoError(t, err)
	require.Equal(t, "[]", resp.Text)
	require.Equal(t, 90, resp.InputTokens)
	require.Equal(t, 2, resp.OutputTokens)

	require.Equal(t, "gpt-4o-mini", capturedBody["model"])

	messages, ok := capturedBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2, "system + user messages")
}

func TestNew(t *testing.T) {
	t.Run("anthropic", func(t *testing.T) {
		client, err := New("anthropic", "key")
		require.NoError(t, err)
		require.IsType(t, &AnthropicClient{}, client)
	})

	t.Run("openai", func(t *testing.T) {
		client, err := New("openai", "key")
		require.NoError(t, err)
		require.IsType(t, &OpenAIClient{}, client)
	})

	t.Run("default", func(t *testing.T) {
		client, err := New("", "key")
		require.NoError(t, err)
		require.IsType(t, &AnthropicClient{}, client)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := New("mystery", "key")
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported LLM provider")
	})
}

func TestDetectProvider(t *testing.T) {
	require.Equal(t, "anthropic", DetectProvider("claude-sonnet-4-20250514"))
	require.Equal(t, "openai", DetectProvider("gpt-4o-mini"))
	require.Equal(t, "openai", DetectProvider("o3-mini"))
	require.Equal(t, "", DetectProvider("llama-3.3-70b"))
}

func TestKeyEnv(t *testing.T) {
	require.Equal(t, "ANTHROPIC_API_KEY", KeyEnv("anthropic"))
	require.Equal(t, "OPENAI_API_KEY", KeyEnv("openai"))
}
