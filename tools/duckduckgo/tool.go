package duckduckgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/bububa/itinerary-agents/tools"
)

const (
	DefaultEndpoint  = "https://lite.duckduckgo.com/lite/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var errRateLimited = errors.New("duckduckgo rate limited")

type Config struct {
	tools.Config
	endpoint      string
	userAgent     string
	httpClient    *http.Client
	interval      time.Duration
	intervalSet   bool
	maxTries      uint
	retryInterval time.Duration
}

// Tool searches the web with DuckDuckGo's lite HTML interface.
// Queries share one limiter, one query per interval.
type Tool struct {
	Config
	limiter *rate.Limiter
}

var _ tools.Searcher = (*Tool)(nil)

func New(opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("DuckDuckGoSearch")
	}
	if ret.endpoint == "" {
		ret.endpoint = DefaultEndpoint
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if !ret.intervalSet {
		ret.interval = time.Second
	}
	if ret.maxTries == 0 {
		ret.maxTries = 4
	}
	if ret.retryInterval <= 0 {
		ret.retryInterval = time.Second
	}
	if ret.interval > 0 {
		ret.limiter = rate.NewLimiter(rate.Every(ret.interval), 1)
	} else {
		ret.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return ret
}

// Search runs one query and returns at most maxResults results
func (t *Tool) Search(ctx context.Context, query string, maxResults any) ([]tools.SearchResult, error) {
	query, err := tools.ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	limit, err := tools.CoerceMaxResults(maxResults)
	if err != nil {
		return nil, err
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", tools.ErrSearchUnavailable, err)
	}
	sess := t.openSession()
	defer sess.Close()
	body, err := sess.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: duckduckgo: %w", tools.ErrSearchUnavailable, err)
	}
	results, err := parseResults(body, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: duckduckgo: %w", tools.ErrSearchUnavailable, err)
	}
	return results, nil
}

// session is one provider round trip. Close releases the response body.
type session struct {
	tool *Tool
	resp *http.Response
}

func (t *Tool) openSession() *session {
	return &session{tool: t}
}

func (s *session) query(ctx context.Context, query string) (io.Reader, error) {
	form := url.Values{}
	form.Set("q", query)
	payload := form.Encode()
	op := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tool.endpoint, strings.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", s.tool.userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := s.tool.httpClient.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		return resp, nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.tool.retryInterval
	b.MaxInterval = 30 * time.Second
	resp, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(s.tool.maxTries))
	if err != nil {
		return nil, err
	}
	s.resp = resp
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *session) Close() {
	if s.resp == nil {
		return
	}
	_, _ = io.Copy(io.Discard, s.resp.Body)
	s.resp.Body.Close()
	s.resp = nil
}
