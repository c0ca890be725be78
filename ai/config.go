package ai

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// EmbeddingAPIKey is the bearer token for the embedding service.
	// Local services accept NoAPIKey.
	EmbeddingAPIKey string

	// EmbeddingBatchSize caps the number of texts sent in one embedding request.
	// Default: 64
	EmbeddingBatchSize int

	// CompletionProvider selects the completion backend: ProviderOpenAI or ProviderAnthropic.
	CompletionProvider string

	// CompletionHost is the base URL for the completion API.
	// Example: "https://api.groq.com/openai/v1". Optional for ProviderAnthropic.
	CompletionHost string

	// CompletionModel is the chat model identifier.
	// Example: "llama-3.1-8b-instant", "claude-haiku-4-5"
	CompletionModel string

	// CompletionAPIKey is the bearer token for the completion service.
	CompletionAPIKey string

	// Temperature is the sampling temperature for completions.
	// Default: 0.2
	Temperature float64

	// MaxTokens caps the length of a completion.
	// Default: 1024
	MaxTokens int

	// RequestsPerSecond limits outbound requests per service. Zero disables limiting.
	RequestsPerSecond float64

	// MaxRetries is the number of attempts adapters make for an embedding request.
	// Default: 1 (no retry)
	MaxRetries int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingAPIKey sets the embedding service token.
func WithEmbeddingAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingAPIKey = key
	}
}

// WithEmbeddingBatchSize sets the maximum number of texts per embedding request.
func WithEmbeddingBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingBatchSize = size
	}
}

// WithCompletionProvider selects the completion backend.
func WithCompletionProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.CompletionProvider = provider
	}
}

// WithCompletionHost sets the completion service host URL.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithCompletionAPIKey sets the completion service token.
func WithCompletionAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.CompletionAPIKey = key
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithRequestsPerSecond sets the outbound request rate limit.
func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// WithMaxRetries sets the number of embedding attempts.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

const (
	// DefaultCompletionHost is the OpenAI-compatible Groq endpoint.
	DefaultCompletionHost = "https://api.groq.com/openai/v1"

	// DefaultCompletionModel is the default model on DefaultCompletionHost.
	DefaultCompletionModel = "llama-3.1-8b-instant"

	// DefaultAnthropicModel replaces DefaultCompletionModel for ProviderAnthropic.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// DefaultConfig returns a Config that embeds with a local OpenAI-compatible
// server and completes through Groq.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:      "http://localhost:11434/v1",
		EmbeddingModel:     "all-minilm",
		EmbeddingAPIKey:    NoAPIKey,
		EmbeddingBatchSize: 64,
		CompletionProvider: ProviderOpenAI,
		CompletionHost:     DefaultCompletionHost,
		CompletionModel:    DefaultCompletionModel,
		Temperature:        0.2,
		MaxTokens:          1024,
		MaxRetries:         1,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithCompletionProvider(ProviderAnthropic),
//	    WithCompletionModel("claude-haiku-4-5"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get a /v1 suffix if missing, empty tokens become
// NoAPIKey and the provider name is lowercased. Under ProviderAnthropic the
// Groq host and model defaults are dropped in favor of Anthropic's.
func (c *Config) Normalize() {
	c.CompletionProvider = strings.ToLower(strings.TrimSpace(c.CompletionProvider))
	if c.CompletionProvider == ProviderAnthropic {
		if c.CompletionHost == DefaultCompletionHost {
			c.CompletionHost = ""
		}
		if c.CompletionModel == DefaultCompletionModel {
			c.CompletionModel = DefaultAnthropicModel
		}
	}
	c.EmbeddingHost = withV1Suffix(c.EmbeddingHost)
	if c.CompletionProvider == ProviderOpenAI {
		c.CompletionHost = withV1Suffix(c.CompletionHost)
		if c.CompletionAPIKey == "" {
			c.CompletionAPIKey = NoAPIKey
		}
	}
	if c.EmbeddingAPIKey == "" {
		c.EmbeddingAPIKey = NoAPIKey
	}
}

func withV1Suffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.EmbeddingBatchSize <= 0 {
		return errors.New("ai config: EmbeddingBatchSize must be positive")
	}
	if !slices.Contains(Providers, c.CompletionProvider) {
		return fmt.Errorf("ai config: %w %q", ErrUnknownProvider, c.CompletionProvider)
	}
	if c.CompletionProvider == ProviderOpenAI && c.CompletionHost == "" {
		return errors.New("ai config: CompletionHost is required")
	}
	if c.CompletionModel == "" {
		return errors.New("ai config: CompletionModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("ai config: RequestsPerSecond must not be negative")
	}
	if c.MaxRetries < 1 {
		return errors.New("ai config: MaxRetries must be at least 1")
	}
	return nil
}
