package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/painminer/painminer/internal/retry"
)

// genericClient is a thin wrapper over openai-go for providers that speak
// the OpenAI chat-completion wire format but aren't Gemini: local Ollama
// servers, OpenRouter, self-hosted vLLM, and similar. Grounded on
// basegraphhq-basegraph's relay/common/llm/openai.go client shape.
type genericClient struct {
	client openai.Client
}

func generateJSON[T any](ctx context.Context, c *genericClient, policy retry.Policy, model, prompt string) (*T, error) {
	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Respond with a single JSON value only. No prose, no markdown fences."),
			openai.UserMessage(prompt),
		},
	}

	var raw string
	err := retry.Do(ctx, policy, func() error {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return fmt.Errorf("generic chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return &retry.Permanent{Err: fmt.Errorf("generic chat completion: no choices returned")}
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out T
	if jsonErr := json.Unmarshal([]byte(raw), &out); jsonErr == nil {
		return &out, nil
	}

	if obj := ExtractJSONObject(raw); obj != "" {
		if err := json.Unmarshal([]byte(TagFallbackExtracted(obj)), &out); err == nil {
			return &out, nil
		}
	}
	if arr := ExtractJSONArray(raw); arr != "" {
		if err := json.Unmarshal([]byte(arr), &out); err == nil {
			return &out, nil
		}
	}
	return nil, fmt.Errorf("generic chat completion: no parseable JSON in response")
}
