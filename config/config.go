// Package config holds the itinerary configuration: defaults < YAML < ENV < flags.
package config

import (
	"time"
)

// Config is the root configuration
type Config struct {
	Model   Model   `mapstructure:"model" yaml:"model"`
	Search  Search  `mapstructure:"search" yaml:"search"`
	Server  Server  `mapstructure:"server" yaml:"server"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
	// HistoryRuns is how many past exchanges a session keeps, 0 uses the command default
	HistoryRuns int `mapstructure:"history_runs" yaml:"history_runs"`
}

// Model configures the OpenAI-compatible chat completion API
type Model struct {
	APIKey        string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	Name          string        `mapstructure:"name" yaml:"name"`
	Temperature   float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxTries      uint          `mapstructure:"max_tries" yaml:"max_tries"`
	RetryInterval time.Duration `mapstructure:"retry_interval" yaml:"retry_interval"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Search configures the web search provider
type Search struct {
	// Provider is "duckduckgo" or "searxng"
	Provider   string        `mapstructure:"provider" yaml:"provider"`
	SearxngURL string        `mapstructure:"searxng_url" yaml:"searxng_url"`
	Interval   time.Duration `mapstructure:"interval" yaml:"interval"`
	MaxTries   uint          `mapstructure:"max_tries" yaml:"max_tries"`
	MaxQueries int           `mapstructure:"max_queries" yaml:"max_queries"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// ShareFindings hands the planner the gathered highlights, false passes only the place
	ShareFindings bool `mapstructure:"share_findings" yaml:"share_findings"`
}

// Server configures the web form
type Server struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	SecureCookie   bool          `mapstructure:"secure_cookie" yaml:"secure_cookie"`

	// MaxSessions bounds the conversations kept in memory, least recently used go first
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// Logging configures log/slog
type Logging struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderSearxng    = "searxng"
)

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Model: Model{
			BaseURL:       "https://api.groq.com/openai/v1",
			Name:          "llama-3.3-70b-versatile",
			Temperature:   0,
			MaxTokens:     4096,
			MaxTries:      3,
			RetryInterval: time.Second,
			Timeout:       2 * time.Minute,
		},
		Search: Search{
			Provider:      ProviderDuckDuckGo,
			Interval:      time.Second,
			MaxTries:      4,
			MaxQueries:    3,
			Timeout:       15 * time.Second,
			ShareFindings: true,
		},
		Server: Server{
			Addr:           ":8501",
			RequestTimeout: 3 * time.Minute,
			MaxSessions:    1024,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}
