package components

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	openai "github.com/sashabaranov/go-openai"
)

// RetryClient retries transient chat completion failures with exponential backoff.
// Only rate limiting (429) and server errors (5xx) are retried.
type RetryClient struct {
	next            ChatClient
	maxTries        uint
	initialInterval time.Duration
	logger          *slog.Logger
}

var _ ChatClient = (*RetryClient)(nil)

// NewRetryClient wraps next. maxTries <= 1 disables retries.
func NewRetryClient(next ChatClient, maxTries uint, initialInterval time.Duration, logger *slog.Logger) *RetryClient {
	if maxTries == 0 {
		maxTries = 1
	}
	if initialInterval <= 0 {
		initialInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryClient{
		next:            next,
		maxTries:        maxTries,
		initialInterval: initialInterval,
		logger:          logger,
	}
}

func (c *RetryClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var attempt int
	op := func() (openai.ChatCompletionResponse, error) {
		attempt++
		resp, err := c.next.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) {
			return resp, backoff.Permanent(err)
		}
		c.logger.WarnContext(ctx, "chat completion failed, retrying", "model", req.Model, "attempt", attempt, "error", err)
		return resp, err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
	)
}

// IsTransient reports whether a chat completion error is worth retrying
func IsTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
