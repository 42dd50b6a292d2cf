package vision

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIGenerator реализует Generator поверх Gemini API.
type GenAIGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGenAIGenerator создаёт клиент Gemini API для указанной модели.
func NewGenAIGenerator(ctx context.Context, apiKey, modelName string) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIGenerator{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate выполняет один запрос к модели и возвращает текст ответа как есть.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}
