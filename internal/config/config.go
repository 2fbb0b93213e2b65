package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the agent.
type Config struct {
	Solana   SolanaConfig   `mapstructure:"solana"`
	Jupiter  JupiterConfig  `mapstructure:"jupiter"`
	Registry RegistryConfig `mapstructure:"registry"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// SolanaConfig holds chain RPC configuration. Jupiter routes mainnet only,
// so the default endpoint is mainnet-beta.
type SolanaConfig struct {
	RPC     string `mapstructure:"rpc"`
	Timeout int    `mapstructure:"timeout"` // per-call timeout in seconds
}

// JupiterConfig holds aggregator configuration.
type JupiterConfig struct {
	// APIKey selects the paid api.jup.ag host; empty uses the free tier.
	APIKey string `mapstructure:"api_key"`
	// BaseURL overrides host selection entirely (used in tests).
	BaseURL string `mapstructure:"base_url"`
	// MinTokenScore is the default organic-score threshold for symbol
	// disambiguation.
	MinTokenScore float64 `mapstructure:"min_token_score"`
}

// RegistryConfig holds curated token registry configuration.
type RegistryConfig struct {
	// Overlay is an optional YAML file whose entries extend or override
	// the embedded curated list.
	Overlay string `mapstructure:"overlay"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPC:     "https://api.mainnet-beta.solana.com",
			Timeout: 30,
		},
		Jupiter: JupiterConfig{
			MinTokenScore: 95,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName(".jupiter-agent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Environment variables, e.g. JUPITER_SOLANA_RPC, JUPITER_SERVER_PORT
	viper.SetEnvPrefix("JUPITER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
