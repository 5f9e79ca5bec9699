// Package config loads tripmeshd configuration from an optional YAML file
// and TRIPMESH_* environment variables, with built-in defaults.
// Precedence (highest to lowest): environment, config file, defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tripmeshd settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// RealtimeConfig holds session channel and monitoring settings.
type RealtimeConfig struct {
	MaxConnections  int           `mapstructure:"max_connections"`
	BufferSize      int           `mapstructure:"buffer_size"`
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
}

// ProvidersConfig holds the fallback chain settings. Provider order in the
// chain is fixed: groq, openai, anthropic, ollama; disabled providers are
// skipped at wiring time.
type ProvidersConfig struct {
	RetryBudget    int           `mapstructure:"retry_budget"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`

	Groq      RemoteProviderConfig `mapstructure:"groq"`
	OpenAI    RemoteProviderConfig `mapstructure:"openai"`
	Anthropic RemoteProviderConfig `mapstructure:"anthropic"`
	Ollama    OllamaConfig         `mapstructure:"ollama"`
}

// RemoteProviderConfig holds settings for one hosted provider.
type RemoteProviderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OllamaConfig holds settings for the local Ollama provider.
type OllamaConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads tripmesh.yaml from the working directory (if present) and
// applies TRIPMESH_* environment overrides, e.g. TRIPMESH_SERVER_ADDR or
// TRIPMESH_PROVIDERS_GROQ_API_KEY.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("tripmesh")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("TRIPMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional unprefixed key variables still work.
	_ = v.BindEnv("providers.groq.api_key", "TRIPMESH_PROVIDERS_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("providers.openai.api_key", "TRIPMESH_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.anthropic.api_key", "TRIPMESH_PROVIDERS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in defaults without touching the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: default values do not unmarshal: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("realtime.max_connections", 100)
	v.SetDefault("realtime.buffer_size", 20)
	v.SetDefault("realtime.monitor_interval", "30s")

	v.SetDefault("providers.retry_budget", 2)
	v.SetDefault("providers.initial_backoff", "250ms")
	v.SetDefault("providers.rate_per_second", 2.0)

	v.SetDefault("providers.groq.enabled", true)
	v.SetDefault("providers.groq.api_key", "")
	v.SetDefault("providers.groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("providers.groq.timeout", "30s")

	v.SetDefault("providers.openai.enabled", false)
	v.SetDefault("providers.openai.api_key", "")
	v.SetDefault("providers.openai.model", "gpt-4o-mini")
	v.SetDefault("providers.openai.timeout", "30s")

	v.SetDefault("providers.anthropic.enabled", false)
	v.SetDefault("providers.anthropic.api_key", "")
	v.SetDefault("providers.anthropic.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("providers.anthropic.timeout", "45s")

	v.SetDefault("providers.ollama.enabled", true)
	v.SetDefault("providers.ollama.endpoint", "http://localhost:11434")
	v.SetDefault("providers.ollama.model", "llama3.2")
	v.SetDefault("providers.ollama.timeout", "120s")
}
