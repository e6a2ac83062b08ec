// Package llm provides the text-completion capability the capability ports
// are built on. Clients are thin HTTP callers against a provider's chat API;
// the orchestration layer never sees provider-specific request shapes.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the text-completion contract. Implementations exist for OpenAI,
// Anthropic, and Ollama chat APIs.
type Client interface {
	// Complete sends the messages and returns the assistant's text reply.
	Complete(ctx context.Context, msgs []Message) (string, error)

	// Close releases any resources held by the client.
	Close() error
}

var (
	// ErrCompletion is returned when the completion backend fails.
	ErrCompletion = errors.New("completion failed")

	// ErrMalformedOutput is returned when the model's reply cannot be
	// decoded into the expected structure.
	ErrMalformedOutput = errors.New("malformed model output")
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config holds configuration for creating a completion client.
type Config struct {
	Provider string // "openai", "anthropic", or "ollama"
	Model    string // e.g. "gpt-4o-mini", "claude-haiku-4-5-20251001", "llama3.2"
	APIKey   string
	BaseURL  string // override base URL
}

// New creates a completion client based on the provided configuration.
func New(cfg Config) (Client, error) {
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model
	baseURL := cfg.BaseURL

	switch provider {
	case ProviderOpenAI, "":
		if model == "" {
			model = "gpt-4o-mini"
		}
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return newOpenAIClient(cfg.APIKey, model, baseURL), nil

	case ProviderAnthropic:
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		if baseURL == "" {
			baseURL = "https://api.anthropic.com"
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		return newAnthropicClient(cfg.APIKey, model, baseURL), nil

	case ProviderOllama:
		if model == "" {
			model = "llama3.2"
		}
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return newOllamaClient(model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
