package duckduckgo

import (
	"net/http"
	"time"
)

type Option func(*Config)

// WithEndpoint overrides the lite HTML endpoint
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.endpoint = endpoint
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.userAgent = ua
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

// WithInterval sets the minimum delay between two queries, 0 disables rate limiting
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.interval = d
		c.intervalSet = true
	}
}

// WithMaxTries sets how many times a rate limited (429) query is attempted
func WithMaxTries(n uint) Option {
	return func(c *Config) {
		c.maxTries = n
	}
}

// WithRetryInterval sets the initial backoff after a 429
func WithRetryInterval(d time.Duration) Option {
	return func(c *Config) {
		c.retryInterval = d
	}
}
