package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SearchInput Schema for input to a tool for searching for information about a destination.
type SearchInput struct {
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of 1 to 3 web search queries." validate:"required,min=1,dive,required"`
	// MaxResults maximum number of results per query, a number such as 5.
	MaxResults any `json:"max_results,omitempty" jsonschema:"title=max_results,description=Maximum number of results per query. Pass it as a number (e.g. 5)."`
}

func NewSearchInput(maxResults any, queries ...string) *SearchInput {
	return &SearchInput{
		Queries:    queries,
		MaxResults: maxResults,
	}
}

func (s SearchInput) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// SearchOutput represents the output of the search tool.
// It is also a system prompt context provider.
type SearchOutput struct {
	// Results List of search result items
	Results []SearchResult `json:"results,omitempty" jsonschema:"title=results,description=List of search result items"`
}

func (s SearchOutput) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

func (s SearchOutput) Title() string {
	return "Web search results"
}

func (s SearchOutput) Info() string {
	var b strings.Builder
	for _, r := range s.Results {
		fmt.Fprintf(&b, "- [%s](%s)", r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, ": %s", r.Snippet)
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// SearchTool runs a batch of queries against a Searcher.
type SearchTool struct {
	Config
	searcher   Searcher
	maxQueries int
}

var _ Tool[SearchInput, SearchOutput] = (*SearchTool)(nil)

// NewSearchTool returns a SearchTool. maxQueries <= 0 uses DefaultMaxQueries.
func NewSearchTool(searcher Searcher, maxQueries int, opts ...Option) *SearchTool {
	ret := &SearchTool{
		searcher:   searcher,
		maxQueries: maxQueries,
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("WebSearchTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Search the web and return a list of results with title, link and snippet.")
	}
	if ret.maxQueries <= 0 {
		ret.maxQueries = DefaultMaxQueries
	}
	return ret
}

// Run executes the queries in order and stops at the first failure
func (t *SearchTool) Run(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if input == nil || len(input.Queries) == 0 {
		return nil, fmt.Errorf("%w: no queries", ErrInvalidParameter)
	}
	queries := input.Queries
	if len(queries) > t.maxQueries {
		queries = queries[:t.maxQueries]
	}
	output := new(SearchOutput)
	for _, q := range queries {
		results, err := t.searcher.Search(ctx, q, input.MaxResults)
		if err != nil {
			return nil, err
		}
		for idx := range results {
			results[idx].Query = q
		}
		output.Results = append(output.Results, results...)
	}
	return output, nil
}
