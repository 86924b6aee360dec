package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"port too high", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
		{"bad bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"custom bind without host", func(c *Config) { c.Gateway.Bind = "custom" }, "gateway.customBindHost"},
		{"unknown primary", func(c *Config) { c.Models.Primary = "ghost" }, "models.primary"},
		{"unknown fallback", func(c *Config) { c.Models.Fallbacks = []string{"ghost"} }, "models.fallbacks"},
		{"bad api", func(c *Config) {
			c.Models.Providers["openai"] = ModelProviderEntry{API: "google-generative-ai"}
		}, "models.providers.openai.api"},
		{"anthropic without model", func(c *Config) {
			c.Models.Providers["claude"] = ModelProviderEntry{API: APIAnthropicMessages}
		}, "models.providers.claude.model"},
		{"agent temperature", func(c *Config) { t := 2.5; c.Agents.Temperature = &t }, "agents.temperature"},
		{"router temperature", func(c *Config) { t := -1.0; c.Router.Temperature = &t }, "router.temperature"},
		{"negative concurrency", func(c *Config) { c.Broadcast.MaxConcurrency = -1 }, "broadcast.maxConcurrency"},
		{"duplicate view", func(c *Config) { c.Views = append(c.Views, c.Views[0]) }, "views[3].name"},
		{"unknown registry", func(c *Config) { c.Views[0].Registry = "finance" }, "views[0].registry"},
		{"bad mode", func(c *Config) { c.Views[0].Mode = "roundrobin" }, "views[0].mode"},
		{"booking on broadcast", func(c *Config) { c.Views[1].Booking = true }, "views[1].booking"},
		{"single mode without triage", func(c *Config) {
			c.Views = append(c.Views, ViewConfig{Name: "x", Registry: "product-broadcast"})
		}, "views[3].mode"},
		{"explicit single without triage", func(c *Config) { c.Views[1].Mode = ModeSingle }, "views[1].mode"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"log style", func(c *Config) { c.Logging.Style = "fancy" }, "logging.style"},
		{"scope", func(c *Config) { c.Session.Scope = "per-channel" }, "session.scope"},
		{"ledger store", func(c *Config) { c.Ledger.Store = "postgres" }, "ledger.store"},
		{"irc missing server", func(c *Config) { c.Channels.IRC = &IRCConfig{Nick: "bot"} }, "channels.irc.server"},
		{"irc sasl without password", func(c *Config) {
			c.Channels.IRC = &IRCConfig{Server: "irc", Nick: "bot", SASL: true}
		}, "channels.irc.sasl"},
		{"irc unknown view", func(c *Config) {
			c.Channels.IRC = &IRCConfig{Server: "irc", Nick: "bot", Views: map[string]string{"#x": "ghost"}}
		}, "channels.irc.views.#x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.NotEmpty(t, issues)
			assert.Contains(t, issuePaths(issues), tt.path)
		})
	}
}

func TestValidate_IRCValid(t *testing.T) {
	cfg := Defaults()
	cfg.Channels.IRC = &IRCConfig{
		Server:   "irc.libera.chat",
		Nick:     "swarmbot",
		Channels: []string{"#pm", "#clinic"},
		View:     "product",
		Views:    map[string]string{"#clinic": "healthcare"},
	}
	assert.Empty(t, Validate(&cfg))
}

func TestValidationIssueString(t *testing.T) {
	v := ValidationIssue{Path: "ledger.store", Message: "bad"}
	assert.Equal(t, "ledger.store: bad", v.String())
}
