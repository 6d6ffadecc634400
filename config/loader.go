package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigName is the YAML file looked up in . and $HOME
	DefaultConfigName = "itinerary"
	EnvPrefix         = "ITINERARY"
)

// Load returns a Config using the hierarchy: defaults < YAML < ENV < flags bound on v.
// path is optional. Without it a missing itinerary.yaml is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("model.api_key", EnvPrefix+"_MODEL_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config yaml: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key, so env overrides apply to keys absent from the file
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("model.api_key", d.Model.APIKey)
	v.SetDefault("model.base_url", d.Model.BaseURL)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.max_tokens", d.Model.MaxTokens)
	v.SetDefault("model.max_tries", d.Model.MaxTries)
	v.SetDefault("model.retry_interval", d.Model.RetryInterval)
	v.SetDefault("model.timeout", d.Model.Timeout)
	v.SetDefault("search.provider", d.Search.Provider)
	v.SetDefault("search.searxng_url", d.Search.SearxngURL)
	v.SetDefault("search.interval", d.Search.Interval)
	v.SetDefault("search.max_tries", d.Search.MaxTries)
	v.SetDefault("search.max_queries", d.Search.MaxQueries)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.share_findings", d.Search.ShareFindings)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.secure_cookie", d.Server.SecureCookie)
	v.SetDefault("server.max_sessions", d.Server.MaxSessions)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("history_runs", d.HistoryRuns)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Model.Name == "" {
		errs = append(errs, errors.New("model.name is required"))
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature %v out of range 0..2", c.Model.Temperature))
	}
	if c.Model.MaxTokens < 0 {
		errs = append(errs, errors.New("model.max_tokens must not be negative"))
	}
	switch c.Search.Provider {
	case ProviderDuckDuckGo:
	case ProviderSearxng:
		if c.Search.SearxngURL == "" {
			errs = append(errs, errors.New("search.searxng_url is required for the searxng provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("search.provider %q is not one of %s, %s", c.Search.Provider, ProviderDuckDuckGo, ProviderSearxng))
	}
	if c.Search.MaxQueries < 1 || c.Search.MaxQueries > 3 {
		errs = append(errs, fmt.Errorf("search.max_queries %d out of range 1..3", c.Search.MaxQueries))
	}
	if c.Search.Interval < 0 {
		errs = append(errs, errors.New("search.interval must not be negative"))
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, errors.New("server.max_sessions must not be negative"))
	}
	if c.HistoryRuns < 0 {
		errs = append(errs, errors.New("history_runs must not be negative"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Masked returns a copy safe to print
func (c Config) Masked() Config {
	c.Model.APIKey = MaskSecret(c.Model.APIKey)
	return c
}

// YAML renders the masked config
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Masked())
}

// MaskSecret keeps the last 4 characters of long secrets
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) < 12:
		return "****"
	}
	return "****" + s[len(s)-4:]
}
