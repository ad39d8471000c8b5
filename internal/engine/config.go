package engine

import "time"

// Config holds the chat-completion engine settings.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.openai.com",
		Model:             "gpt-4o-mini",
		Timeout:           60 * time.Second,
		Temperature:       0.9,
		MaxTokens:         1024,
		RequestsPerMinute: 20,
	}
}
