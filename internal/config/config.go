package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Bridge BridgeConfig `mapstructure:"bridge"`
	Data   DataConfig   `mapstructure:"data"`
	ENS    ENSConfig    `mapstructure:"ens"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// BridgeConfig describes the wallet bridge endpoint. An empty endpoint means
// no wallet provider; every wallet operation then degrades gracefully.
type BridgeConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// DataConfig holds local storage settings.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// ENSConfig holds name-resolution settings.
type ENSConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wconn"
	}
	return filepath.Join(home, ".wconn")
}

// Load reads configuration from file and environment variables. configPath
// may be empty to use the default data directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("bridge.endpoint", "")
	v.SetDefault("bridge.poll_interval", "4s")
	v.SetDefault("data.dir", DefaultDataDir())
	v.SetDefault("ens.cache_ttl", "10m")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")

	if configPath == "" {
		configPath = DefaultDataDir()
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file is optional; defaults and env vars apply.
	}

	v.SetEnvPrefix("WCONN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
