package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultMaxResults is used when the caller does not pass max_results
	DefaultMaxResults = 5
	// MinMaxResults is the smallest accepted max_results
	MinMaxResults = 1
	// MaxMaxResults is the largest accepted max_results
	MaxMaxResults = 25
	// DefaultMaxQueries caps the number of queries one SearchTool run executes
	DefaultMaxQueries = 3
)

var (
	// ErrInvalidParameter is returned for a caller error such as an empty query
	// or a max_results value that is not an integer in range
	ErrInvalidParameter = errors.New("invalid search parameter")
	// ErrSearchUnavailable is returned when the search provider could not be reached or understood
	ErrSearchUnavailable = errors.New("search unavailable")
)

// SearchResult represents a single search result item
type SearchResult struct {
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result"`
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result"`
	// Snippet The content snippet of the search result
	Snippet string `json:"snippet,omitempty" jsonschema:"title=snippet,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query string `json:"query,omitempty" jsonschema:"title=query,description=The query used to obtain this search result"`
}

// Searcher executes one web search query against a provider.
// maxResults accepts an integer, a numeric string, or nil for the default.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults any) ([]SearchResult, error)
}

// CoerceMaxResults normalizes a numeric-or-string max_results value.
// nil yields DefaultMaxResults. Anything that is not an integer in
// [MinMaxResults, MaxMaxResults] yields ErrInvalidParameter.
func CoerceMaxResults(v any) (int, error) {
	var n int
	switch val := v.(type) {
	case nil:
		return DefaultMaxResults, nil
	case int:
		n = val
	case int32:
		n = int(val)
	case int64:
		n = int(val)
	case uint:
		n = int(val)
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%w: max_results %v is not an integer", ErrInvalidParameter, val)
		}
		n = int(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: max_results %q is not an integer", ErrInvalidParameter, val.String())
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%w: max_results %q is not an integer", ErrInvalidParameter, val)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: max_results has unsupported type %T", ErrInvalidParameter, v)
	}
	if n < MinMaxResults || n > MaxMaxResults {
		return 0, fmt.Errorf("%w: max_results %d out of range %d..%d", ErrInvalidParameter, n, MinMaxResults, MaxMaxResults)
	}
	return n, nil
}

// ValidateQuery returns the trimmed query or ErrInvalidParameter when it is blank
func ValidateQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: query is empty", ErrInvalidParameter)
	}
	return query, nil
}
