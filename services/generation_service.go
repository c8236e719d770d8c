package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator produces a completion for a prompt. Implementations wrap one
// model backend; every call is one-shot, no conversation state is kept.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorConfig holds tuning shared by the generation backends.
type GeneratorConfig struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// OllamaGenerator generates completions from a locally served Ollama model.
type OllamaGenerator struct {
	llm    llms.Model
	config GeneratorConfig
}

// NewOllamaGenerator creates a generator backed by the configured Ollama model.
func NewOllamaGenerator(config GeneratorConfig) (*OllamaGenerator, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama LLM: %w", err)
	}

	return &OllamaGenerator{
		llm:    llm,
		config: config,
	}, nil
}

// Generate sends the prompt to the model and returns the completion verbatim.
func (g *OllamaGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := g.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(g.config.MaxTokens),
		llms.WithTemperature(g.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no completion choices")
	}

	var sb strings.Builder
	for _, choice := range response.Choices {
		if choice != nil && choice.Content != "" {
			sb.WriteString(choice.Content)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("ollama returned an empty completion")
	}
	return sb.String(), nil
}
