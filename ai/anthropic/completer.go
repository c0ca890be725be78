// Package anthropic implements ai.Completer on the Anthropic Messages API.
package anthropic

import (
	"context"
	"log/slog"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/poiesic/docrag/ai"
)

// Completer implements ai.Completer using anthropic-sdk-go.
type Completer struct {
	client      anthropicsdk.Client
	model       string
	temperature float64
	maxTokens   int64
	limiter     *ai.RateLimiter
	logger      *slog.Logger
}

// NewCompleter creates a completer from the completion settings of config.
// An empty CompletionAPIKey falls back to the SDK's ANTHROPIC_API_KEY lookup.
// CompletionHost, when set, overrides the API base URL.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var opts []option.RequestOption
	if config.CompletionAPIKey != "" {
		opts = append(opts, option.WithAPIKey(config.CompletionAPIKey))
	}
	if config.CompletionHost != "" {
		opts = append(opts, option.WithBaseURL(config.CompletionHost))
	}

	return &Completer{
		client:      anthropicsdk.NewClient(opts...),
		model:       config.CompletionModel,
		temperature: config.Temperature,
		maxTokens:   int64(config.MaxTokens),
		limiter:     ai.NewRateLimiter(config.RequestsPerSecond),
		logger:      slog.Default().With("component", "anthropic-completer"),
	}, nil
}

// Complete sends system as the top-level system block and user as the only
// message, and returns the concatenated text blocks of the reply.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(user)),
		},
		Temperature: anthropicsdk.Float(c.temperature),
	}
	if system != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: system}}
	}

	c.logger.Debug("requesting completion", "model", c.model, "prompt_length", len(system)+len(user))
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.logger.Error("completion request failed", "err", err)
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ai.ErrEmptyCompletion
	}
	return sb.String(), nil
}
