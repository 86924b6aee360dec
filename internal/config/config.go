package config

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrMissingCredential reports that the primary provider has no API key.
var ErrMissingCredential = errors.New("missing API key")

// Default sampling parameters of agent and router calls.
const (
	DefaultModel             = "gpt-4o-mini"
	DefaultAgentTemperature  = 0.7
	DefaultRouterTemperature = 0.3
	DefaultMaxTokens         = 1000
	DefaultPort              = 18790
)

func float(v float64) *float64 { return &v }

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: DefaultPort,
			Bind: "loopback",
		},
		Models: ModelsConfig{
			Primary: "openai",
			Providers: map[string]ModelProviderEntry{
				"openai": {
					API:    APIOpenAICompletions,
					APIKey: "${OPENAI_API_KEY}",
					Model:  DefaultModel,
				},
			},
		},
		Agents: AgentsConfig{
			Temperature: float(DefaultAgentTemperature),
			MaxTokens:   DefaultMaxTokens,
		},
		Router: RouterConfig{
			Temperature: float(DefaultRouterTemperature),
			MaxTokens:   DefaultMaxTokens,
		},
		Broadcast: BroadcastConfig{
			MaxConcurrency: 4,
		},
		Views: DefaultViews(),
		Session: SessionConfig{
			Scope:       "per-sender",
			IdleMinutes: 30,
		},
		Ledger: LedgerConfig{
			Store: "memory",
			Path:  ":memory:",
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}

// DefaultViews returns the three conversational views served out of the box.
func DefaultViews() []ViewConfig {
	return []ViewConfig{
		{Name: "product", Registry: "product", Mode: ModeSingle},
		{Name: "product-broadcast", Registry: "product-broadcast", Mode: ModeBroadcast},
		{Name: "healthcare", Registry: "healthcare", Mode: ModeSingle, Booking: true},
	}
}

// View returns the view named name.
func (c *Config) View(name string) (ViewConfig, bool) {
	for _, v := range c.Views {
		if v.Name == name {
			return v, true
		}
	}
	return ViewConfig{}, false
}

// RequireCredentials checks that the primary provider can authenticate.
// A missing key is a startup condition: callers exit before serving.
func RequireCredentials(cfg *Config) error {
	name := cfg.Models.Primary
	p, ok := cfg.Models.Providers[name]
	if !ok {
		return &ConfigError{Message: fmt.Sprintf("models.primary: unknown provider %q", name)}
	}
	if p.Auth == "none" {
		return nil
	}
	if p.APIKey == "" || envVarPattern.MatchString(p.APIKey) {
		return &ConfigError{
			Message: fmt.Sprintf("provider %q: set apiKey or export %s", name, keyEnvVar(p.API)),
			Err:     ErrMissingCredential,
		}
	}
	return nil
}

func keyEnvVar(api string) string {
	if api == APIAnthropicMessages {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}
