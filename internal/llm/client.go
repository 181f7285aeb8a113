// Package llm provides the collaborator capabilities consumed by the
// simulation engine: persona response generation and semantic question
// routing. Both are narrow interfaces so the engine's deterministic logic
// can be tested against scripted implementations, with Anthropic and
// OpenAI-compatible HTTP backends for real runs.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Persona describes one voice the generator can speak as: a care-team
// member or the client.
type Persona struct {
	// Name is the responder identity used throughout the event log.
	Name string `json:"name" yaml:"name"`

	// Role is a short machine key for trigger routing: "logistics",
	// "physician", "wearables", "nutrition", "movement", "leadership",
	// or "member".
	Role string `json:"role" yaml:"role"`

	// Voice is the free-form persona description handed to the generator.
	Voice string `json:"voice" yaml:"voice"`
}

// Generator produces an in-character raw response for a persona. The raw
// text is parsed downstream; implementations make no guarantee it is valid
// JSON.
type Generator interface {
	// Generate returns the raw collaborator output for the persona
	// identified by name, given the distilled simulation context and the
	// trigger being responded to.
	Generate(ctx context.Context, persona Persona, simContext, trigger string) (string, error)
}

// Router chooses which specialist should answer a member question. The
// returned identity is advisory: the engine validates it against the
// roster and substitutes a default when it is unknown.
type Router interface {
	Route(ctx context.Context, question, history string) (string, error)
}

// ClientConfig configures the LLM backend.
type ClientConfig struct {
	// Provider identifies the backend: "anthropic", "openai", or "" for
	// disabled.
	Provider string `json:"provider" yaml:"provider"`

	// APIKey is the API key for the provider. Supports ${VAR} expansion
	// at config load time.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint. Used for local
	// OpenAI-compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the model identifier to use for requests.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Timeout is the maximum duration to wait for a response.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Enabled indicates whether collaborator calls are made at all. When
	// false the run executes in pure discrete-event mode.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// RedactedAPIKey returns the API key with most characters masked.
// Shows first 4 and last 4 characters, e.g., "sk-a...xyz9".
// Returns "" for empty keys and "(set)" for keys shorter than 12 chars.
func (c ClientConfig) RedactedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) < 12 {
		return "(set)"
	}
	return c.APIKey[:4] + "..." + c.APIKey[len(c.APIKey)-4:]
}

// DefaultConfig returns a ClientConfig with sensible defaults.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		Provider: "",
		Timeout:  30 * time.Second,
		Enabled:  false,
	}
}

// Client bundles both collaborator capabilities behind one backend.
type Client interface {
	Generator
	Router
}

// NewClient builds the configured backend. The specialists slice is the
// roster offered to the router. An unknown provider is a configuration
// error and must abort before the scheduler starts.
func NewClient(config ClientConfig, specialists []Persona) (Client, error) {
	switch config.Provider {
	case "anthropic":
		return NewAnthropicClient(config, specialists), nil
	case "openai":
		return NewOpenAIClient(config, specialists), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (want \"anthropic\" or \"openai\")", config.Provider)
	}
}
