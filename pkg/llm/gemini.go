package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Default generation settings for analysis and chat completions.
const (
	defaultMaxOutputTokens = 4000
	defaultTemperature     = 0.7
)

// defaultGeminiModels is the ordered fallback list tried on each request.
// Newer models are preferred; older ones keep the service answering when a
// preview model is retired or the account lacks access.
var defaultGeminiModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-pro",
}

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	// Models is the ordered list of model names to try. Defaults to
	// defaultGeminiModels.
	Models []string

	// MaxOutputTokens caps the completion length.
	MaxOutputTokens int32

	// Temperature controls sampling randomness.
	Temperature float32

	client *genai.Client
}

// Compile-time interface check
var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		Models:          defaultGeminiModels,
		MaxOutputTokens: defaultMaxOutputTokens,
		Temperature:     defaultTemperature,
		client:          client,
	}, nil
}

// Complete sends a prompt to the Gemini API, walking the model fallback list
// until one model answers. The last model's error is returned when all fail.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	models := g.Models
	if len(models) == 0 {
		models = defaultGeminiModels
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.Temperature),
		MaxOutputTokens: g.MaxOutputTokens,
	}

	var lastErr error
	for _, model := range models {
		resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
		if err != nil {
			lastErr = fmt.Errorf("model %s: %w", model, err)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		text := resp.Text()
		if text == "" {
			lastErr = fmt.Errorf("model %s: empty response", model)
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("all gemini models failed: %w", lastErr)
}
