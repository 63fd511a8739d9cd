package core

import (
	"os"
	"time"
)

// Config is the single immutable configuration value constructed once at
// process start and passed explicitly into collaborator constructors. Each
// credential is independently optional; availability is an explicit field
// here rather than a scattered environment check.
type Config struct {
	// Credentials. Empty means the collaborator is not configured.
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
	SearchKey    string
	WeatherKey   string

	// Derived availability flags, fixed at construction. Callers still
	// check the concrete collaborator for nil at call time because a
	// configured service can be replaced or fail mid-process.
	AIConfigured     bool
	SearchConfigured bool
	VerifyConfigured bool

	// Timeouts. Every network call is individually bounded; the turn as a
	// whole is bounded by TurnTimeout.
	TurnTimeout   time.Duration
	CallTimeout   time.Duration
	EnrichTimeout time.Duration

	// FetchConcurrency bounds the resource agent's parallel URL workers.
	FetchConcurrency int

	// DefaultRegion keys the fallback knowledge base when no location can
	// be resolved.
	DefaultRegion string
}

// DefaultConfig returns the baseline timeouts and limits with no credentials.
func DefaultConfig() Config {
	return Config{
		TurnTimeout:      30 * time.Second,
		CallTimeout:      8 * time.Second,
		EnrichTimeout:    5 * time.Second,
		FetchConcurrency: 5,
		DefaultRegion:    "national",
	}
}

// ConfigFromEnv builds the process configuration from the environment. This
// is the only place credentials are read.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.SearchKey = os.Getenv("SEARCH_API_KEY")
	cfg.WeatherKey = os.Getenv("WEATHER_API_KEY")
	cfg.AIConfigured = cfg.OpenAIKey != "" || cfg.AnthropicKey != "" || cfg.GeminiKey != ""
	cfg.SearchConfigured = cfg.SearchKey != ""
	cfg.VerifyConfigured = cfg.WeatherKey != ""
	return cfg
}
