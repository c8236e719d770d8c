package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP listener and request limits.
type ServerConfig struct {
	Port             string `yaml:"port"`
	MaxDocumentBytes int    `yaml:"max_document_bytes"`
}

// LLMConfig selects and tunes the completion backend.
type LLMConfig struct {
	Provider       string  `yaml:"provider"` // "ollama" or "gemini"
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	GeminiModel    string  `yaml:"gemini_model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// EmbeddingConfig tunes the Ollama embedding endpoint.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChromaConfig locates the vector database.
type ChromaConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

// GuidelinesConfig controls the knowledge-base index.
type GuidelinesConfig struct {
	Dir          string `yaml:"dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	Watch        bool   `yaml:"watch"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Chroma     ChromaConfig     `yaml:"chroma"`
	Guidelines GuidelinesConfig `yaml:"guidelines"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/underwriter/config.yaml"),
			"/etc/underwriter/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.MaxDocumentBytes == 0 {
		config.Server.MaxDocumentBytes = 512 * 1024
	}

	if config.LLM.Provider == "" {
		config.LLM.Provider = "ollama"
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "mistral"
	}
	if config.LLM.GeminiModel == "" {
		config.LLM.GeminiModel = "gemini-2.5-flash"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.2
	}
	if config.LLM.TimeoutSeconds == 0 {
		config.LLM.TimeoutSeconds = 120
	}

	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = config.LLM.BaseURL
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "nomic-embed-text:v1.5"
	}
	if config.Embedding.TimeoutSeconds == 0 {
		config.Embedding.TimeoutSeconds = 30
	}

	if config.Chroma.URL == "" {
		config.Chroma.URL = "http://localhost:8000"
	}
	if config.Chroma.Collection == "" {
		config.Chroma.Collection = "underwriting-guidelines"
	}

	if config.Guidelines.Dir == "" {
		config.Guidelines.Dir = "data"
	}
	if config.Guidelines.ChunkSize == 0 {
		config.Guidelines.ChunkSize = 1000
	}
	if config.Guidelines.ChunkOverlap == 0 {
		config.Guidelines.ChunkOverlap = 200
	}
	if config.Guidelines.TopK == 0 {
		config.Guidelines.TopK = 3
	}
}

func mergeWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
		config.Embedding.BaseURL = baseURL
	}
	if chromaURL := os.Getenv("CHROMA_URL"); chromaURL != "" {
		config.Chroma.URL = chromaURL
	}
	if dir := os.Getenv("GUIDELINES_DIR"); dir != "" {
		config.Guidelines.Dir = dir
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
}
