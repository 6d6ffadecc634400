package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bububa/itinerary-agents/tools"
)

func startSearxngServer(t *testing.T, results []resultItem) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{
			Query:           r.URL.Query().Get("q"),
			NumberOfResults: len(results),
			Results:         results,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearxngSearch(t *testing.T) {
	srv := startSearxngServer(t, []resultItem{
		{Title: "Florence travel guide", URL: "https://example.com/florence", Content: " Museums and food "},
	})
	tool := New(WithBaseURL(srv.URL), WithHttpClient(srv.Client()))
	result, err := tool.Search(context.Background(), "florence", nil)
	if err != nil {
		t.Fatalf("Error running SearxngSearch: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Error number of results, expect 1, but got %d", len(result))
	}
	if result[0].Snippet != "Museums and food" {
		t.Errorf("Expect snippet Museums and food, but got %s", result[0].Snippet)
	}
}

func TestSearxngSearchMissingFields(t *testing.T) {
	srv := startSearxngServer(t, []resultItem{
		{Title: "Result Missing Content", URL: "https://example.com/1"},
		{Content: "Result Missing Title", URL: "https://example.com/2"},
		{Title: "Result Missing URL", Content: "Some content"},
		{Title: "Valid Result", Content: "Some content", URL: "https://example.com/5"},
	})
	tool := New(WithBaseURL(srv.URL), WithHttpClient(srv.Client()))
	result, err := tool.Search(context.Background(), "query with missing fields", "5")
	if err != nil {
		t.Fatalf("Error running SearxngSearch: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Error number of results, expect 2, but got %d", len(result))
	}
	if title := result[1].Title; title != "Valid Result" {
		t.Errorf("Expect title Valid Result, but got %s", title)
	}
}

func TestSearxngSearchWithMaxResults(t *testing.T) {
	srv := startSearxngServer(t, []resultItem{
		{Title: "One", URL: "https://example.com/1"},
		{Title: "Two", URL: "https://example.com/2"},
		{Title: "Three", URL: "https://example.com/3"},
	})
	tool := New(WithBaseURL(srv.URL), WithHttpClient(srv.Client()))
	result, err := tool.Search(context.Background(), "query with max results", 2)
	if err != nil {
		t.Fatalf("Error running SearxngSearch: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Error number of results, expect 2, but got %d", len(result))
	}
}

func TestSearxngSearchUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	tool := New(WithBaseURL(srv.URL), WithHttpClient(srv.Client()))
	if _, err := tool.Search(context.Background(), "rome", nil); !errors.Is(err, tools.ErrSearchUnavailable) {
		t.Errorf("Expect ErrSearchUnavailable, but got %v", err)
	}
	if _, err := New().Search(context.Background(), "rome", nil); !errors.Is(err, tools.ErrSearchUnavailable) {
		t.Errorf("Expect ErrSearchUnavailable without base url, but got %v", err)
	}
	if _, err := tool.Search(context.Background(), "rome", "many"); !errors.Is(err, tools.ErrInvalidParameter) {
		t.Errorf("Expect ErrInvalidParameter, but got %v", err)
	}
}
