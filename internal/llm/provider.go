// Package llm abstracts the chat backends used for structured extraction.
// Every backend speaks the same contract: a message list in, a single
// top-level JSON object out.
package llm

import (
	"context"
	"fmt"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a JSON-mode chat backend.
type Provider interface {
	// ChatJSON sends the conversation and returns the parsed top-level
	// JSON object from the reply.
	ChatJSON(ctx context.Context, messages []Message) (map[string]any, error)
}

// Config selects and tunes a backend.
type Config struct {
	Backend     string  `mapstructure:"backend"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float32 `mapstructure:"temperature"`
}

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// DefaultConfig matches the local-first setup the pipeline was tuned on.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendOllama,
		Model:       "llama3.2",
		BaseURL:     "http://localhost:11434",
		Temperature: 0.1,
	}
}

// New builds the provider named by cfg.Backend.
func New(cfg Config) (Provider, error) {
	switch cfg.Backend {
	case BackendOllama, "":
		return NewOllama(cfg), nil
	case BackendOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}
