// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Profile names the controller looks up for its two collaborators.
const (
	ProfilePlanner = "planner"
	ProfileWorker  = "worker"
)

// Config represents the mission configuration.
type Config struct {
	Mission   MissionConfig      `toml:"mission"`
	LLM       LLMConfig          `toml:"llm"`      // Default LLM settings
	Profiles  map[string]Profile `toml:"profiles"` // Per-collaborator overrides
	Storage   StorageConfig      `toml:"storage"`  // Record storage settings
	Events    EventsConfig       `toml:"events"`   // Event distribution settings
	Telemetry TelemetryConfig    `toml:"telemetry"`
	MCP       MCPConfig          `toml:"mcp"`      // MCP tool servers
	Timeouts  TimeoutsConfig     `toml:"timeouts"` // Network operation timeouts
}

// MissionConfig contains mission-level settings.
type MissionConfig struct {
	Identity       string `toml:"identity"`        // Identity name or card path
	IdentitiesDir  string `toml:"identities_dir"`  // Directory scanned for identity cards
	Bundle         string `toml:"bundle"`          // Instruction bundle path ("" = built-in)
	MaxIterations  int    `toml:"max_iterations"`  // 0 = controller default
	MemoryCapacity int    `toml:"memory_capacity"` // 0 = controller default
	Workspace      string `toml:"workspace"`       // Watched working directory
}

// LLMConfig contains LLM provider settings.
type LLMConfig struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	APIKeyEnv    string `toml:"api_key_env"`
	MaxTokens    int    `toml:"max_tokens"`
	BaseURL      string `toml:"base_url"`      // Custom API endpoint (OpenRouter, LiteLLM, Ollama, LMStudio)
	Thinking     string `toml:"thinking"`      // Thinking level: auto|off|low|medium|high
	MaxRetries   int    `toml:"max_retries"`   // Max retry attempts (default 5)
	RetryBackoff string `toml:"retry_backoff"` // Max backoff duration (default "60s")
}

// Profile maps a collaborator to a specific LLM configuration.
type Profile struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	MaxTokens int    `toml:"max_tokens"`
	BaseURL   string `toml:"base_url"` // Custom API endpoint
	Thinking  string `toml:"thinking"` // Thinking level: auto|off|low|medium|high
}

// StorageConfig contains record storage settings.
type StorageConfig struct {
	RecordsDir string `toml:"records_dir"` // Directory for mission record files
}

// EventsConfig contains lifecycle event distribution settings.
type EventsConfig struct {
	NATSURL        string `toml:"nats_url"` // "" disables publishing
	Subject        string `toml:"subject"`  // Subject prefix for published events
	WatchWorkspace bool   `toml:"watch_workspace"`
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled  bool              `toml:"enabled"`
	Endpoint string            `toml:"endpoint"` // OTLP endpoint (e.g., localhost:4317)
	Protocol string            `toml:"protocol"` // grpc (default) or http
	Insecure bool              `toml:"insecure"` // Disable TLS (default false)
	Headers  map[string]string `toml:"headers"`  // Auth headers (e.g., DD-API-KEY, x-honeycomb-team)
}

// MCPConfig contains MCP tool server configuration.
type MCPConfig struct {
	Servers map[string]MCPServerConfig `toml:"servers"`
}

// MCPServerConfig configures an MCP server connection.
type MCPServerConfig struct {
	Command     string            `toml:"command"`
	Args        []string          `toml:"args,omitempty"`
	Env         map[string]string `toml:"env,omitempty"`
	DeniedTools []string          `toml:"denied_tools,omitempty"` // Tools to exclude from LLM
}

// TimeoutsConfig contains timeout settings for network operations.
type TimeoutsConfig struct {
	MCP int `toml:"mcp"` // MCP tool call timeout in seconds (default 60)
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Mission: MissionConfig{
			IdentitiesDir: "identities",
			Workspace:     ".",
		},
		LLM: LLMConfig{
			MaxTokens: 4096,
		},
		Storage: StorageConfig{
			RecordsDir: "~/.local/mission/records",
		},
		Events: EventsConfig{
			Subject:        "mission.events",
			WatchWorkspace: true,
		},
		Telemetry: TelemetryConfig{
			Protocol: "noop",
		},
		Timeouts: TimeoutsConfig{
			MCP: 60, // 60 seconds for MCP calls
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from mission.toml in the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return LoadFile(filepath.Join(cwd, "mission.toml"))
}

// ExpandPath resolves a leading ~ to the user home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// GetAPIKey returns the API key from the configured environment variable.
// If api_key_env is not set, uses the default env var for the provider.
func (c *Config) GetAPIKey() string {
	envVar := c.LLM.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	case "mistral":
		return "MISTRAL_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return ""
	}
}

// GetProfile returns the LLM config for a collaborator profile.
// Falls back to the default LLM config if the profile is not found.
func (c *Config) GetProfile(name string) LLMConfig {
	if name == "" {
		return c.LLM
	}
	if profile, ok := c.Profiles[name]; ok {
		result := LLMConfig{
			Provider:  profile.Provider,
			Model:     profile.Model,
			APIKeyEnv: profile.APIKeyEnv,
			MaxTokens: profile.MaxTokens,
			BaseURL:   profile.BaseURL,
			Thinking:  profile.Thinking,
		}
		if result.Provider == "" {
			result.Provider = c.LLM.Provider
		}
		if result.Model == "" {
			result.Model = c.LLM.Model
		}
		if result.APIKeyEnv == "" {
			result.APIKeyEnv = c.LLM.APIKeyEnv
		}
		if result.MaxTokens == 0 {
			result.MaxTokens = c.LLM.MaxTokens
		}
		if result.BaseURL == "" {
			result.BaseURL = c.LLM.BaseURL
		}
		if result.Thinking == "" {
			result.Thinking = c.LLM.Thinking
		}
		return result
	}
	return c.LLM
}

// GetProfileAPIKey returns the API key for a specific profile.
func (c *Config) GetProfileAPIKey(profileName string) string {
	llmCfg := c.GetProfile(profileName)
	envVar := llmCfg.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(llmCfg.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}
