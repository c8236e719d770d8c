package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Server.MaxDocumentBytes < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.max_document_bytes",
			Message: "max_document_bytes must be positive",
		})
	}

	switch c.LLM.Provider {
	case "ollama", "gemini":
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q, must be \"ollama\" or \"gemini\"", c.LLM.Provider),
		})
	}

	if c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL is required",
		})
	} else if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.Embedding.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedding.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.Chroma.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "chroma.url",
			Message: "Chroma URL is required",
		})
	} else if _, err := url.Parse(c.Chroma.URL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "chroma.url",
			Message: "invalid Chroma URL",
		})
	}

	if c.Chroma.Collection == "" {
		errors = append(errors, ValidationError{
			Field:   "chroma.collection",
			Message: "collection name is required",
		})
	}

	if c.Guidelines.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "guidelines.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Guidelines.ChunkOverlap < 0 || c.Guidelines.ChunkOverlap >= c.Guidelines.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "guidelines.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Guidelines.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "guidelines.top_k",
			Message: "top_k must be positive",
		})
	}

	return errors
}
