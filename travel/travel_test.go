package travel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/tools"
)

const italyPlan = `# Five days in Florence

## Day 1: Arrival and the Duomo
- Climb Brunelleschi's dome.
- Budget: 150 USD

## Day 2: Uffizi Gallery
- Try lampredotto at the market.
- Budget: 120 USD

## Day 3: Oltrarno
- Budget: 100 USD

## Day 4: Day trip to Siena
- Budget: 180 USD

## Day 5: Boboli Gardens
- Budget: 90 USD

## Cost-saving tips
- Buy a Firenze Card.
`

// scriptedClient answers each agent by the name found in its system prompt
type scriptedClient struct {
	mtx         sync.Mutex
	replies     map[string]string
	err         error
	panicMsg    string
	requests    map[string][]openai.ChatCompletionRequest
	credentials []string
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		replies: map[string]string{
			"Travel Search queries": `{"queries": ["best cities to visit in Italy", "Florence food"], "max_results": "5"}`,
			TravelSearchName:        `{"place": "Florence", "country": "Italy", "attractions": ["Uffizi Gallery"], "foods": ["lampredotto"]}`,
			PlannerName:             italyPlan,
		},
		requests: make(map[string][]openai.ChatCompletionRequest),
	}
}

func agentOf(req openai.ChatCompletionRequest) string {
	system := req.Messages[0].Content
	for _, name := range []string{"Travel Search queries", TravelSearchName, PlannerName} {
		if strings.Contains(system, fmt.Sprintf("You are %s.", name)) {
			return name
		}
	}
	return ""
}

func (c *scriptedClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	name := agentOf(req)
	c.requests[name] = append(c.requests[name], req)
	c.credentials = append(c.credentials, components.Credential(ctx))
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		ID:    "chatcmpl-test",
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.replies[name]}},
		},
		Usage: openai.Usage{PromptTokens: 100, CompletionTokens: 50},
	}, nil
}

func (c *scriptedClient) calls() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	var n int
	for _, reqs := range c.requests {
		n += len(reqs)
	}
	return n
}

func (c *scriptedClient) requestsOf(name string) []openai.ChatCompletionRequest {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.requests[name]
}

type stubSearcher struct {
	mtx     sync.Mutex
	queries []string
	err     error
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults any) ([]tools.SearchResult, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if _, err := tools.CoerceMaxResults(maxResults); err != nil {
		return nil, err
	}
	return []tools.SearchResult{
		{Title: "Top 10 cities in Italy", URL: "https://example.com/italy", Snippet: "Florence, Rome, Venice"},
	}, nil
}

func (s *stubSearcher) calls() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.queries)
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
}

func newTestDriver(clt components.ChatClient, searcher tools.Searcher, opts ...DriverOption) *Driver {
	registry := NewRegistry(clt, searcher, WithClock(fixedClock))
	return NewDriver(registry, append([]DriverOption{WithDefaultCredential("gsk_test")}, opts...)...)
}

func italyRequest() TripRequest {
	return TripRequest{
		Destination: "Italy",
		Budget:      "2000 USD",
		Days:        5,
		Interests:   "art, food",
		UseSearch:   true,
		MaxResults:  5,
	}
}
