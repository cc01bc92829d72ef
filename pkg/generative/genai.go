package generative

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGenAIModel = "gemini-1.5-flash"

// GenAIBackend calls a Gemini model directly.
type GenAIBackend struct {
	client *genai.Client
	model  string
}

func NewGenAIBackend(ctx context.Context, apiKey, model string) (*GenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultGenAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIBackend{client: client, model: model}, nil
}

func (b *GenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	result, err := b.client.Models.GenerateContent(ctx,
		b.model,
		genai.Text(BuildPrompt(req.Query, req.DataContext)),
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return result.Text(), nil
}

func (b *GenAIBackend) Name() string {
	return fmt.Sprintf("genai:%s", b.model)
}
