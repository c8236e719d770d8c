package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiGenerator generates completions from the hosted Gemini API. It is an
// alternative to the default local Ollama backend, selected via
// llm.provider in the config.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGenerator wraps an authenticated genai client.
func NewGeminiGenerator(client *genai.Client, model string, timeout time.Duration) *GeminiGenerator {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &GeminiGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// Generate performs a single one-shot generation. Requests are stateless, so
// no chat session is created.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var systemInstruction *genai.Content
	if contents := genai.Text(systemPrompt); len(contents) > 0 {
		systemInstruction = contents[0]
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no completion candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned an empty completion")
	}
	return sb.String(), nil
}
