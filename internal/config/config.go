package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port          string `mapstructure:"port"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
	RateBurst     int    `mapstructure:"rate_burst"`
}

// LimitsConfig bounds request sizes so a single pricing call cannot pin the
// server. Requests above a limit are rejected, never clamped.
type LimitsConfig struct {
	MaxPaths         int `mapstructure:"max_paths"`
	MaxPathSteps     int `mapstructure:"max_path_steps"`
	MaxLatticeSteps  int `mapstructure:"max_lattice_steps"`
	MaxStreamBatches int `mapstructure:"max_stream_batches"`
}

type PricingConfig struct {
	Workers       int    `mapstructure:"workers"`
	DefaultPayoff string `mapstructure:"default_payoff"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_per_second", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("limits.max_paths", 2_000_000)
	v.SetDefault("limits.max_path_steps", 10_000)
	v.SetDefault("limits.max_lattice_steps", 20_000)
	v.SetDefault("limits.max_stream_batches", 100)
	v.SetDefault("pricing.workers", 1)
	v.SetDefault("pricing.default_payoff", "max(S - K, 0)")
	v.SetDefault("logging.level", "info")

	// Environment variable support
	v.SetEnvPrefix("OPTIONPRICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.RatePerSecond < 1 {
		return fmt.Errorf("rate_per_second must be >= 1")
	}
	if c.Server.RateBurst < c.Server.RatePerSecond {
		return fmt.Errorf("rate_burst must be >= rate_per_second")
	}
	if c.Limits.MaxPaths < 1 || c.Limits.MaxPathSteps < 1 || c.Limits.MaxLatticeSteps < 1 {
		return fmt.Errorf("limits must be >= 1")
	}
	if c.Limits.MaxStreamBatches < 1 {
		return fmt.Errorf("max_stream_batches must be >= 1")
	}
	if c.Pricing.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if strings.TrimSpace(c.Pricing.DefaultPayoff) == "" {
		return fmt.Errorf("default_payoff is required")
	}
	return nil
}
