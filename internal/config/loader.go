package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides (SWARMBOT_GATEWAY_PORT, ...).
const EnvPrefix = "SWARMBOT"

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and passwords can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	if cfg.Channels.IRC != nil {
		cfg.Channels.IRC.Password = expandEnvVars(cfg.Channels.IRC.Password)
	}
	for name, provider := range cfg.Models.Providers {
		provider.APIKey = expandEnvVars(provider.APIKey)
		provider.BaseURL = expandEnvVars(provider.BaseURL)
		for k, v := range provider.Headers {
			provider.Headers[k] = expandEnvVars(v)
		}
		cfg.Models.Providers[name] = provider
	}
}

// envOverrides are the SWARMBOT_* variables read by envconfig.
type envOverrides struct {
	GatewayPort       int    `envconfig:"GATEWAY_PORT"`
	GatewayBind       string `envconfig:"GATEWAY_BIND"`
	LogLevel          string `envconfig:"LOG_LEVEL"`
	Model             string `envconfig:"MODEL"`
	Provider          string `envconfig:"PROVIDER"`
	LedgerStore       string `envconfig:"LEDGER_STORE"`
	BroadcastParallel *bool  `envconfig:"BROADCAST_PARALLEL"`
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Message: "failed to parse config", Err: err}
		}
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config", Err: err}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	d := Defaults()

	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = d.Gateway.Port
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = d.Gateway.Bind
	}
	if cfg.Models.Providers == nil {
		cfg.Models.Providers = d.Models.Providers
	}
	if cfg.Models.Primary == "" {
		cfg.Models.Primary = d.Models.Primary
	}
	for name, p := range cfg.Models.Providers {
		if p.API == "" {
			p.API = APIOpenAICompletions
		}
		if p.APIKey == "" && p.Auth != "none" {
			p.APIKey = "${" + keyEnvVar(p.API) + "}"
		}
		if p.Model == "" && p.API == APIOpenAICompletions {
			p.Model = DefaultModel
		}
		cfg.Models.Providers[name] = p
	}
	if cfg.Agents.Temperature == nil {
		cfg.Agents.Temperature = d.Agents.Temperature
	}
	if cfg.Agents.MaxTokens == 0 {
		cfg.Agents.MaxTokens = d.Agents.MaxTokens
	}
	if cfg.Router.Temperature == nil {
		cfg.Router.Temperature = d.Router.Temperature
	}
	if cfg.Router.MaxTokens == 0 {
		cfg.Router.MaxTokens = d.Router.MaxTokens
	}
	if cfg.Broadcast.MaxConcurrency == 0 {
		cfg.Broadcast.MaxConcurrency = d.Broadcast.MaxConcurrency
	}
	if len(cfg.Views) == 0 {
		cfg.Views = d.Views
	}
	for i := range cfg.Views {
		if cfg.Views[i].Registry == "" {
			cfg.Views[i].Registry = cfg.Views[i].Name
		}
		if cfg.Views[i].Mode == "" {
			cfg.Views[i].Mode = ModeSingle
		}
	}
	if cfg.Session.Scope == "" {
		cfg.Session.Scope = d.Session.Scope
	}
	if cfg.Session.IdleMinutes == 0 {
		cfg.Session.IdleMinutes = d.Session.IdleMinutes
	}
	if cfg.Ledger.Store == "" {
		cfg.Ledger.Store = d.Ledger.Store
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = d.Ledger.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = d.Logging.Style
	}
}

// applyEnvOverrides reads SWARMBOT_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return &ConfigError{Message: "invalid environment override", Err: err}
	}

	if env.GatewayPort != 0 {
		cfg.Gateway.Port = env.GatewayPort
	}
	if env.GatewayBind != "" {
		cfg.Gateway.Bind = env.GatewayBind
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if env.Model != "" {
		cfg.Agents.Model = env.Model
		cfg.Router.Model = env.Model
	}
	if env.Provider != "" {
		cfg.Models.Primary = env.Provider
	}
	if env.LedgerStore != "" {
		cfg.Ledger.Store = strings.ToLower(env.LedgerStore)
	}
	if env.BroadcastParallel != nil {
		cfg.Broadcast.Parallel = *env.BroadcastParallel
	}
	return nil
}
