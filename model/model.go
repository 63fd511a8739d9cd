// Package model defines the shared machinery of AI backend adapters: prompt
// construction, tolerant JSON response parsing and a deterministic mock for
// tests. Concrete providers live in the subpackages openai, anthropic and
// gemini; all of them produce plain-text completions that are parsed here so
// provider quirks stay out of the agents.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clarionhq/clarion/core"
)

// ClassifyPrompt asks for a strict JSON intent classification of raw text.
func ClassifyPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following emergency request and classify its primary intent.
Your response MUST be a single valid JSON object with exactly these fields and no additional text:
{
  "intent": "rescue" | "resource" | "information",
  "confidence": number between 0 and 1,
  "location": "geographic location mentioned, or null",
  "hazard": "flood" | "fire" | "wildfire" | "earthquake" | "hurricane" | "tornado" | "medical" | "general",
  "urgency": "high" | "medium" | "low"
}

Where:
- "rescue": the user needs immediate life-saving assistance
- "resource": the user needs to locate specific contacts or supplies
- "information": the user is seeking guidance or status updates

Request: %q

JSON response:`, text)
}

// ExtractPrompt asks the model to classify ambiguous contact spans.
func ExtractPrompt(text string, hints []string) string {
	var b strings.Builder
	b.WriteString("The following values were found on an emergency-resources web page but could not be classified.\n")
	b.WriteString("For each value decide whether it is a phone number, an emergency phone number, an email, an address, or noise.\n")
	b.WriteString("Respond with a single JSON object: {\"contacts\": [{\"value\": string, \"kind\": \"phone\"|\"emergency_phone\"|\"email\"|\"address\", \"confidence\": number 0-1}]}.\n")
	b.WriteString("Omit values that are not contact information.\n\nValues:\n")
	b.WriteString(text)
	if len(hints) > 0 {
		b.WriteString("\nSurrounding context:\n")
		for _, h := range hints {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nJSON response:")
	return b.String()
}

// ExtractJSON pulls the first balanced-looking JSON object out of a
// completion that may carry prose around it. Returns "" when no object is
// present.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

type classification struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Location   *string  `json:"location"`
	Hazard     string   `json:"hazard"`
	Urgency    string   `json:"urgency"`
}

// ParseIntent converts a completion into a core.Intent. Confidence values on
// a 0-100 scale are normalized; unknown intent labels map to IntentUnknown.
func ParseIntent(raw string) (core.Intent, error) {
	payload := ExtractJSON(raw)
	if payload == "" {
		return core.UnknownIntent(), fmt.Errorf("no JSON object in classification response: %w", core.ErrBackendUnavailable)
	}
	var c classification
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return core.UnknownIntent(), fmt.Errorf("parse classification: %w", err)
	}
	confidence := c.Confidence
	if confidence > 1 {
		confidence /= 100
	}
	if confidence < 0 {
		confidence = 0
	}
	intent := core.Intent{
		Kind:       intentKind(c.Intent),
		Confidence: confidence,
	}
	if c.Location != nil && *c.Location != "null" {
		intent.Slots.Location = *c.Location
	}
	intent.Slots.Hazard = core.Hazard(strings.ToLower(c.Hazard))
	switch strings.ToLower(c.Urgency) {
	case "high":
		intent.Slots.Urgency = core.UrgencyHigh
	case "medium":
		intent.Slots.Urgency = core.UrgencyMedium
	case "low":
		intent.Slots.Urgency = core.UrgencyLow
	}
	return intent, nil
}

func intentKind(label string) core.IntentKind {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "rescue":
		return core.IntentRescue
	case "resource":
		return core.IntentResource
	case "information":
		return core.IntentInformation
	default:
		return core.IntentUnknown
	}
}

type candidateList struct {
	Contacts []struct {
		Value      string  `json:"value"`
		Kind       string  `json:"kind"`
		Confidence float64 `json:"confidence"`
	} `json:"contacts"`
}

// ParseCandidates converts a completion into contact candidates, dropping
// entries with unrecognized kinds.
func ParseCandidates(raw string) ([]core.ContactCandidate, error) {
	payload := ExtractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in extraction response: %w", core.ErrBackendUnavailable)
	}
	var list candidateList
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}
	var out []core.ContactCandidate
	for _, c := range list.Contacts {
		kind := core.ContactKind(strings.ToLower(c.Kind))
		switch kind {
		case core.ContactPhone, core.ContactEmergencyPhone, core.ContactEmail, core.ContactAddress:
		default:
			continue
		}
		confidence := c.Confidence
		if confidence > 1 {
			confidence /= 100
		}
		out = append(out, core.ContactCandidate{Value: c.Value, Kind: kind, Confidence: confidence})
	}
	return out, nil
}

// MockBackend is a deterministic in-memory Backend for tests and examples.
type MockBackend struct {
	Intents    map[string]core.Intent
	Candidates []core.ContactCandidate
	Err        error
	Calls      int
}

// NewMockBackend constructs an empty mock.
func NewMockBackend() *MockBackend {
	return &MockBackend{Intents: map[string]core.Intent{}}
}

// AddIntent registers a canned classification for an exact input text.
func (m *MockBackend) AddIntent(text string, intent core.Intent) { m.Intents[text] = intent }

// Classify implements core.Backend.
func (m *MockBackend) Classify(_ context.Context, text string) (core.Intent, error) {
	m.Calls++
	if m.Err != nil {
		return core.UnknownIntent(), m.Err
	}
	if intent, ok := m.Intents[text]; ok {
		return intent, nil
	}
	return core.UnknownIntent(), nil
}

// ExtractContacts implements core.Backend.
func (m *MockBackend) ExtractContacts(_ context.Context, _ string, _ []string) ([]core.ContactCandidate, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Candidates, nil
}

// Provider implements core.Backend.
func (m *MockBackend) Provider() string { return "mock" }
