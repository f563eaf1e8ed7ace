package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls the OpenAI chat completions API for answer
// generation. Temperature sits low so answers stay faithful to the
// supplied context instead of getting creative.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIGenerator creates a generator reading its API key from the given
// environment variable.
func NewOpenAIGenerator(apiKeyEnv, model string, temperature float32) (*OpenAIGenerator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
	}, nil
}

// Generate sends one stateless system+user exchange and returns the
// assistant's reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the generative model.
func (g *OpenAIGenerator) ModelName() string {
	return g.model
}
