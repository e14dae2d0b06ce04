package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"cv-checker/usecase"
)

const defaultModel = openai.GPT4oMini

// OpenAIClient implements the LLM port against any OpenAI-compatible
// chat endpoint. There is no timeout and no retry around the call:
// a hung request stalls only its own process, and a failed attempt
// permanently fails the evaluation.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient reads OPENAI_API_KEY, and optionally
// OPENAI_BASE_URL and OPENAI_MODEL, from the environment.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set in environment")
	}

	cfg := openai.DefaultConfig(apiKey)
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete sends the prompt as a single user message and returns the
// raw reply with its finish reason and total token usage.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (usecase.Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return usecase.Completion{}, fmt.Errorf("chat completion request failed: %w", err)
	}

	comp := usecase.Completion{TotalTokens: resp.Usage.TotalTokens}
	if len(resp.Choices) > 0 {
		comp.Content = resp.Choices[0].Message.Content
		comp.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return comp, nil
}
