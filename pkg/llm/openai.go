package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const defaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAIClient implements Client against the OpenAI Chat Completions API.
// It exists as an alternate provider for deployments without Gemini access.
type OpenAIClient struct {
	// Model is the chat model name. Defaults to gpt-4o-mini.
	Model string

	client *openai.Client
}

// Compile-time interface check
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates an OpenAI-backed completion client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		Model:  defaultOpenAIModel,
		client: &client,
	}, nil
}

// Complete sends a prompt as a single user message and returns the first
// choice's content.
func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	model := o.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
