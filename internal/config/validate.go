package config

import (
	"fmt"
	"slices"

	"github.com/KLM-Solutions/swarm-bot/internal/catalog"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		add("gateway.port", "port must be 0-65535, got %d", cfg.Gateway.Port)
	}
	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		add("gateway.bind", "must be one of %v, got %q", validBinds, cfg.Gateway.Bind)
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		add("gateway.customBindHost", "required when bind is custom")
	}

	// Model providers
	validAPIs := []string{APIOpenAICompletions, APIAnthropicMessages}
	if _, ok := cfg.Models.Providers[cfg.Models.Primary]; !ok {
		add("models.primary", "unknown provider %q", cfg.Models.Primary)
	}
	for _, name := range cfg.Models.Fallbacks {
		if _, ok := cfg.Models.Providers[name]; !ok {
			add("models.fallbacks", "unknown provider %q", name)
		}
	}
	for name, p := range cfg.Models.Providers {
		if p.API != "" && !slices.Contains(validAPIs, p.API) {
			add("models.providers."+name+".api", "must be one of %v, got %q", validAPIs, p.API)
		}
		if p.API == APIAnthropicMessages && p.Model == "" {
			add("models.providers."+name+".model", "required for %s", APIAnthropicMessages)
		}
		if p.Auth != "" && p.Auth != "api-key" && p.Auth != "none" {
			add("models.providers."+name+".auth", "must be api-key or none, got %q", p.Auth)
		}
	}

	// Sampling
	if t := cfg.Agents.Temperature; t != nil && (*t < 0 || *t > 2) {
		add("agents.temperature", "must be 0-2, got %v", *t)
	}
	if t := cfg.Router.Temperature; t != nil && (*t < 0 || *t > 2) {
		add("router.temperature", "must be 0-2, got %v", *t)
	}
	if cfg.Agents.MaxTokens < 0 {
		add("agents.maxTokens", "must not be negative, got %d", cfg.Agents.MaxTokens)
	}
	if cfg.Router.MaxTokens < 0 {
		add("router.maxTokens", "must not be negative, got %d", cfg.Router.MaxTokens)
	}
	if cfg.Broadcast.MaxConcurrency < 0 {
		add("broadcast.maxConcurrency", "must not be negative, got %d", cfg.Broadcast.MaxConcurrency)
	}

	// Views
	seen := map[string]bool{}
	validModes := []string{ModeSingle, ModeBroadcast}
	for i, v := range cfg.Views {
		path := fmt.Sprintf("views[%d]", i)
		if v.Name == "" {
			add(path+".name", "name is required")
		} else if seen[v.Name] {
			add(path+".name", "duplicate view %q", v.Name)
		}
		seen[v.Name] = true
		reg, ok := catalog.Lookup(v.Registry)
		if !ok {
			add(path+".registry", "must be one of %v, got %q", catalog.Names(), v.Registry)
		} else if reg.TriageID() == "" && v.Mode != ModeBroadcast {
			add(path+".mode", "registry %q has no triage agent and only supports %s mode", v.Registry, ModeBroadcast)
		}
		if v.Mode != "" && !slices.Contains(validModes, v.Mode) {
			add(path+".mode", "must be one of %v, got %q", validModes, v.Mode)
		}
		if v.Booking && v.Mode == ModeBroadcast {
			add(path+".booking", "booking requires single mode")
		}
	}

	// Logging validation
	if cfg.Logging.Level != "" && !slices.Contains(logging.ValidLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", logging.ValidLevels, cfg.Logging.Level)
	}
	validStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		add("logging.style", "must be one of %v, got %q", validStyles, cfg.Logging.Style)
	}

	// Session validation
	validScopes := []string{"per-sender", "global"}
	if cfg.Session.Scope != "" && !slices.Contains(validScopes, cfg.Session.Scope) {
		add("session.scope", "must be one of %v, got %q", validScopes, cfg.Session.Scope)
	}
	if cfg.Session.IdleMinutes < 0 {
		add("session.idleMinutes", "must not be negative, got %d", cfg.Session.IdleMinutes)
	}

	// Ledger validation
	validStores := []string{"memory", "sqlite"}
	if cfg.Ledger.Store != "" && !slices.Contains(validStores, cfg.Ledger.Store) {
		add("ledger.store", "must be one of %v, got %q", validStores, cfg.Ledger.Store)
	}

	// IRC validation (only if configured)
	if irc := cfg.Channels.IRC; irc != nil {
		if irc.Server == "" {
			add("channels.irc.server", "server is required")
		}
		if irc.Nick == "" {
			add("channels.irc.nick", "nick is required")
		}
		if irc.Port < 0 || irc.Port > 65535 {
			add("channels.irc.port", "port must be 0-65535, got %d", irc.Port)
		}
		if irc.SASL && irc.Password == "" {
			add("channels.irc.sasl", "SASL requires a password to be set")
		}
		if irc.View != "" && !seen[irc.View] {
			add("channels.irc.view", "unknown view %q", irc.View)
		}
		for ch, view := range irc.Views {
			if !seen[view] {
				add("channels.irc.views."+ch, "unknown view %q", view)
			}
		}
	}

	return issues
}
