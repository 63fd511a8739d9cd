// Package anthropic implements the AI backend collaborator over the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/model"
)

// Options configure the Anthropic backend adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Backend wraps the Anthropic Messages API behind the core.Backend interface.
type Backend struct {
	client *anthropic.Client
	opts   Options
}

// NewBackend creates an Anthropic backend using the official client.
func NewBackend(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.1,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Backend{client: &client, opts: opts}
}

// NewBackendFromClient wraps an existing client.
func NewBackendFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.1,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Classify implements core.Backend.
func (b *Backend) Classify(ctx context.Context, text string) (core.Intent, error) {
	raw, err := b.complete(ctx, model.ClassifyPrompt(text))
	if err != nil {
		return core.UnknownIntent(), err
	}
	return model.ParseIntent(raw)
}

// ExtractContacts implements core.Backend.
func (b *Backend) ExtractContacts(ctx context.Context, text string, hints []string) ([]core.ContactCandidate, error) {
	raw, err := b.complete(ctx, model.ExtractPrompt(text, hints))
	if err != nil {
		return nil, err
	}
	return model.ParseCandidates(raw)
}

// Provider implements core.Backend.
func (b *Backend) Provider() string { return "anthropic" }

func (b *Backend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       b.opts.Model,
		MaxTokens:   b.opts.MaxTokens,
		Temperature: anthropic.Float(b.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.AsText().Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: no text content returned: %w", core.ErrBackendUnavailable)
}
