package agents

import (
	"log/slog"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/components/systemprompt"
)

type Option func(a *Config)

func WithClient(clt components.ChatClient) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// RunOption customizes a single Run call without touching the shared agent
type RunOption func(*runOptions)

type runOptions struct {
	history   []components.Message
	providers []systemprompt.ContextProvider
}

// WithHistory supplies prior conversation messages, oldest first
func WithHistory(messages []components.Message) RunOption {
	return func(o *runOptions) {
		o.history = messages
	}
}

// WithContextProviders adds context providers to the system prompt of this run only
func WithContextProviders(providers ...systemprompt.ContextProvider) RunOption {
	return func(o *runOptions) {
		o.providers = append(o.providers, providers...)
	}
}

func newRunOptions(opts []RunOption) *runOptions {
	ret := new(runOptions)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
