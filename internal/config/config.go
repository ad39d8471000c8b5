// Package config loads themeforge configuration from file and environment
// via Viper, and builds the application logger from it.
package config

import (
	"fmt"
	"time"

	"github.com/HerbHall/themeforge/pkg/theme"
	"github.com/spf13/viper"
)

// EngineConfig mirrors internal/engine.Config for unmarshaling. Kept here
// so config consumers do not import the engine package.
type EngineConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	APIKeyEnv         string        `mapstructure:"api_key_env"`
}

// StoreConfig locates the durable theme database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Config is the full application configuration.
type Config struct {
	Engine    EngineConfig          `mapstructure:"engine"`
	Diversity theme.DiversityConfig `mapstructure:"diversity"`
	Store     StoreConfig           `mapstructure:"store"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("engine.base_url", "https://api.openai.com")
	v.SetDefault("engine.model", "gpt-4o-mini")
	v.SetDefault("engine.timeout", "60s")
	v.SetDefault("engine.temperature", 0.9)
	v.SetDefault("engine.max_tokens", 1024)
	v.SetDefault("engine.requests_per_minute", 20)
	v.SetDefault("engine.api_key_env", "THEMEFORGE_API_KEY")
	v.SetDefault("diversity.min_color_distance", 50.0)
	v.SetDefault("diversity.max_similarity_score", 0.7)
	v.SetDefault("diversity.session_capacity", 10)
	v.SetDefault("store.path", "./data/themeforge.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("themeforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/themeforge")
	}

	// Environment variable support: TF_ENGINE_MODEL=gpt-4o
	v.SetEnvPrefix("TF")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}

// Unmarshal decodes the loaded settings into the typed Config.
func Unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
