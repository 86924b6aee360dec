package config

// Config is the root configuration for swarmbot.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Models    ModelsConfig    `yaml:"models,omitempty"`
	Agents    AgentsConfig    `yaml:"agents,omitempty"`
	Router    RouterConfig    `yaml:"router,omitempty"`
	Broadcast BroadcastConfig `yaml:"broadcast,omitempty"`
	Views     []ViewConfig    `yaml:"views,omitempty"`
	Channels  ChannelsConfig  `yaml:"channels,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	Ledger    LedgerConfig    `yaml:"ledger,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// ModelsConfig defines completion providers and the failover order.
type ModelsConfig struct {
	Primary   string                        `yaml:"primary,omitempty"`
	Fallbacks []string                      `yaml:"fallbacks,omitempty"`
	Providers map[string]ModelProviderEntry `yaml:"providers,omitempty"`
}

// ModelProviderEntry defines a completion provider.
type ModelProviderEntry struct {
	API            string            `yaml:"api,omitempty"` // "openai-completions" | "anthropic-messages"
	BaseURL        string            `yaml:"baseUrl,omitempty"`
	APIKey         string            `yaml:"apiKey,omitempty"`
	Auth           string            `yaml:"auth,omitempty"` // "api-key" | "none"
	Model          string            `yaml:"model,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	TimeoutSeconds int               `yaml:"timeoutSeconds,omitempty"`
}

// Provider API identifiers.
const (
	APIOpenAICompletions = "openai-completions"
	APIAnthropicMessages = "anthropic-messages"
)

// AgentsConfig defines the sampling parameters of agent calls.
type AgentsConfig struct {
	Model       string   `yaml:"model,omitempty"` // overrides the provider model
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
}

// RouterConfig defines the sampling parameters of the classification call.
type RouterConfig struct {
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
}

// BroadcastConfig controls how broadcast turns fan out.
type BroadcastConfig struct {
	Parallel       bool `yaml:"parallel,omitempty"`
	MaxConcurrency int  `yaml:"maxConcurrency,omitempty"`
}

// View modes.
const (
	ModeSingle    = "single"
	ModeBroadcast = "broadcast"
)

// ViewConfig binds a conversational view to an agent registry.
type ViewConfig struct {
	Name     string `yaml:"name"`
	Registry string `yaml:"registry"`
	Mode     string `yaml:"mode,omitempty"`    // "single" | "broadcast"
	Booking  bool   `yaml:"booking,omitempty"` // sessions own an appointment ledger
}

// ChannelsConfig defines channel-specific configurations.
type ChannelsConfig struct {
	IRC *IRCConfig `yaml:"irc,omitempty"`
}

// IRCConfig defines IRC channel settings.
type IRCConfig struct {
	Server   string            `yaml:"server"`
	Port     int               `yaml:"port,omitempty"`
	Nick     string            `yaml:"nick"`
	Password string            `yaml:"password,omitempty"`
	Channels []string          `yaml:"channels"`
	UseTLS   bool              `yaml:"useTLS,omitempty"`
	SASL     bool              `yaml:"sasl,omitempty"`
	Views    map[string]string `yaml:"views,omitempty"` // IRC channel -> view name
	View     string            `yaml:"view,omitempty"`  // view for channels not listed in Views
}

// SessionConfig defines session behavior.
type SessionConfig struct {
	Scope       string `yaml:"scope,omitempty"` // "per-sender" | "global"
	IdleMinutes int    `yaml:"idleMinutes,omitempty"`
}

// LedgerConfig selects the appointment ledger backend.
type LedgerConfig struct {
	Store string `yaml:"store,omitempty"` // "memory" | "sqlite"
	Path  string `yaml:"path,omitempty"`  // sqlite database path, ":memory:" by default
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
	Style string `yaml:"style,omitempty"` // "pretty" | "compact" | "json"
}
