// Package gemini implements the AI backend collaborator over Google's
// Gemini API via the google.golang.org/genai client.
package gemini

import (
	"context"
	"fmt"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/model"
	"google.golang.org/genai"
)

// Options configure the Gemini backend adapter.
type Options struct {
	Model string
}

// Backend wraps the genai client behind the core.Backend interface.
type Backend struct {
	client *genai.Client
	opts   Options
}

// NewBackend creates a Gemini backend. The API key is required because the
// genai client has no ambient-credential fallback for API-key auth.
func NewBackend(ctx context.Context, apiKey string, optFns ...func(o *Options)) (*Backend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required: %w", core.ErrBackendUnavailable)
	}
	opts := Options{Model: "gemini-2.0-flash"}
	for _, fn := range optFns {
		fn(&opts)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Backend{client: client, opts: opts}, nil
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
func (b *Backend) Provider() string { return "gemini" }

func (b *Backend) complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := b.client.Models.GenerateContent(ctx, b.opts.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty completion: %w", core.ErrBackendUnavailable)
	}
	return text, nil
}
