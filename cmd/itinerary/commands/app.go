package commands

import (
	"log/slog"
	"net/http"

	"github.com/spf13/viper"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/config"
	"github.com/bububa/itinerary-agents/logger"
	"github.com/bububa/itinerary-agents/tools"
	"github.com/bububa/itinerary-agents/tools/duckduckgo"
	"github.com/bububa/itinerary-agents/tools/searxng"
	"github.com/bububa/itinerary-agents/travel"
)

// configFilePath holds the custom config file path if specified
var configFilePath string

// SetConfigPath sets a custom config file path
func SetConfigPath(path string) {
	configFilePath = path
}

// loadConfig reads the configuration through the global viper, where root flags are bound
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper(), configFilePath)
}

// newDriver wires the model client, the searcher and the team registry. Tests replace it.
var newDriver = buildDriver

func buildDriver(cfg *config.Config, historyRuns int, l *slog.Logger) *travel.Driver {
	pool := components.NewClientPool(cfg.Model.BaseURL,
		components.WithDefaultKey(cfg.Model.APIKey),
		components.WithHTTPClient(&http.Client{Timeout: cfg.Model.Timeout}),
	)
	client := components.NewRetryClient(pool, cfg.Model.MaxTries, cfg.Model.RetryInterval, l)
	registry := travel.NewRegistry(client, newSearcher(cfg),
		travel.WithModel(cfg.Model.Name),
		travel.WithTemperature(cfg.Model.Temperature),
		travel.WithMaxTokens(cfg.Model.MaxTokens),
		travel.WithMaxQueries(cfg.Search.MaxQueries),
		travel.WithHistoryRuns(historyRuns),
		travel.WithShareMemberInteractions(cfg.Search.ShareFindings),
		travel.WithLogger(l),
	)
	return travel.NewDriver(registry,
		travel.WithDefaultCredential(cfg.Model.APIKey),
		travel.WithMaxSessions(cfg.Server.MaxSessions),
		travel.WithDriverLogger(l),
	)
}

func newSearcher(cfg *config.Config) tools.Searcher {
	httpClient := &http.Client{Timeout: cfg.Search.Timeout}
	if cfg.Search.Provider == config.ProviderSearxng {
		return searxng.New(
			searxng.WithBaseURL(cfg.Search.SearxngURL),
			searxng.WithHttpClient(httpClient),
		)
	}
	return duckduckgo.New(
		duckduckgo.WithHttpClient(httpClient),
		duckduckgo.WithInterval(cfg.Search.Interval),
		duckduckgo.WithMaxTries(cfg.Search.MaxTries),
	)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

// historyRuns picks the configured history size or the command default
func historyRuns(cfg *config.Config, fallback int) int {
	if cfg.HistoryRuns > 0 {
		return cfg.HistoryRuns
	}
	return fallback
}
