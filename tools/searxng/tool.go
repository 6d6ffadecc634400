package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bububa/itinerary-agents/tools"
)

type Category = string

const (
	GeneralCategory Category = "general"
	NewsCategory    Category = "news"
)

// resultItem is one entry of the SearxNG JSON response
type resultItem struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// searchResponse represents the entire response from the SearxNG instance
type searchResponse struct {
	Query           string       `json:"query"`
	NumberOfResults int          `json:"number_of_results"`
	Results         []resultItem `json:"results"`
}

type Config struct {
	tools.Config
	language   string
	baseURL    string
	category   Category
	httpClient *http.Client
}

// Tool searches a self-hosted SearxNG instance through its JSON API.
type Tool struct {
	Config
}

var _ tools.Searcher = (*Tool)(nil)

func New(opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SearxngSearch")
	}
	if ret.category == "" {
		ret.category = GeneralCategory
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return ret
}

// Search queries the instance and keeps at most maxResults results that carry both a title and a URL
func (t *Tool) Search(ctx context.Context, query string, maxResults any) ([]tools.SearchResult, error) {
	query, err := tools.ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	limit, err := tools.CoerceMaxResults(maxResults)
	if err != nil {
		return nil, err
	}
	if t.baseURL == "" {
		return nil, fmt.Errorf("%w: searxng base url not configured", tools.ErrSearchUnavailable)
	}
	items, err := t.fetchSearchResults(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: searxng: %w", tools.ErrSearchUnavailable, err)
	}
	ret := make([]tools.SearchResult, 0, limit)
	for _, item := range items {
		if item.Title == "" || item.URL == "" {
			continue
		}
		ret = append(ret, tools.SearchResult{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: strings.TrimSpace(item.Content),
		})
		if len(ret) == limit {
			break
		}
	}
	return ret, nil
}

// fetchSearchResults queries the search engine and returns the parsed items
func (t *Tool) fetchSearchResults(ctx context.Context, query string) ([]resultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", "bing,duckduckgo,google,startpage,yandex")
	values.Set("categories", t.category)
	if t.language != "" {
		values.Set("language", t.language)
	}
	link := fmt.Sprintf("%s/search?%s", strings.TrimRight(t.baseURL, "/"), values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch search results for query '%s': %d", query, httpResp.StatusCode)
	}
	var resp searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
