// Package openai implements the AI backend collaborator over the OpenAI
// Chat Completions API. It adapts Clarion's Classify/ExtractContacts
// contract onto plain-text JSON completions parsed by the model package.
package openai

import (
	"context"
	"fmt"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI backend adapter. Fields mirror a minimal
// subset of Chat Completion parameters; extend via functional options.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Backend wraps the OpenAI client behind the core.Backend interface.
type Backend struct {
	client *openai.Client
	opts   Options
}

// NewBackend creates an OpenAI backend using the official client. Without an
// explicit key the SDK falls back to OPENAI_API_KEY from the environment.
func NewBackend(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
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
	client := openai.NewClient(clientOpts...)
	return &Backend{client: &client, opts: opts}
}

// NewBackendFromClient wraps an existing client, for tests and custom transports.
func NewBackendFromClient(client *openai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
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
func (b *Backend) Provider() string { return "openai" }

func (b *Backend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(b.opts.Temperature),
		MaxCompletionTokens: openai.Int(b.opts.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned: %w", core.ErrBackendUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
