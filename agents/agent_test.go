package agents

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/components/systemprompt"
	"github.com/bububa/itinerary-agents/components/systemprompt/cot"
	"github.com/bububa/itinerary-agents/schema"
	"github.com/bububa/itinerary-agents/tools"
)

type fakeClient struct {
	mtx      sync.Mutex
	replies  []string
	err      error
	requests []openai.ChatCompletionRequest
}

func (c *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return openai.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
		},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5},
	}, nil
}

type city struct {
	Name    string `json:"name" jsonschema:"title=name,description=City name" validate:"required"`
	Country string `json:"country,omitempty"`
}

func (c city) String() string { return c.Name }

func TestAgentTextRun(t *testing.T) {
	clt := &fakeClient{replies: []string{"## Day 1\nArrive."}}
	agent := NewAgent[schema.String, schema.String](
		WithClient(clt),
		WithName("Planner"),
		WithModel("llama-3.3-70b-versatile"),
		WithSystemPromptGenerator(cot.New(cot.WithBackground([]string{"- You plan trips."}))),
	)
	history := []components.Message{
		*components.NewMessage(components.UserRole, "earlier task"),
		*components.NewMessage(components.AssistantRole, "earlier plan"),
	}
	in := schema.NewString("Plan 1 day in Rome")
	out := new(schema.String)
	resp := new(components.LLMResponse)
	err := agent.Run(context.Background(), in, out, resp,
		WithHistory(history),
		WithContextProviders(systemprompt.NewStaticProvider("Destination", "Rome, Italy")),
	)
	require.NoError(t, err)
	assert.Equal(t, "## Day 1\nArrive.", out.String())
	assert.EqualValues(t, 10, resp.Usage.InputTokens)

	require.Len(t, clt.requests, 1)
	req := clt.requests[0]
	assert.Nil(t, req.ResponseFormat)
	assert.Equal(t, float32(math.SmallestNonzeroFloat32), req.Temperature)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "- You plan trips.")
	assert.Contains(t, req.Messages[0].Content, "## Destination\nRome, Italy")
	assert.Equal(t, "earlier task", req.Messages[1].Content)
	assert.Equal(t, "earlier plan", req.Messages[2].Content)
	assert.Equal(t, "Plan 1 day in Rome", req.Messages[3].Content)

	// per-run providers do not leak into the next run
	assert.NotContains(t, agent.SystemPrompt(), "Rome, Italy")
}

func TestAgentStructuredRun(t *testing.T) {
	clt := &fakeClient{replies: []string{"```json\n{\"name\": \"Florence\", \"country\": \"Italy\",}\n```"}}
	agent := NewAgent[schema.String, city](WithClient(clt), WithName("Locator"), WithTemperature(0.3))
	assert.True(t, agent.Structured())

	out := new(city)
	require.NoError(t, agent.Run(context.Background(), schema.NewString("Italy"), out, nil))
	assert.Equal(t, city{Name: "Florence", Country: "Italy"}, *out)

	req := clt.requests[0]
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	assert.Equal(t, float32(0.3), req.Temperature)
	assert.Contains(t, req.Messages[0].Content, "## Output format")
	assert.Contains(t, req.Messages[0].Content, `"name"`)
}

func TestAgentStructuredValidation(t *testing.T) {
	clt := &fakeClient{replies: []string{`{"country": "Italy"}`}}
	agent := NewAgent[schema.String, city](WithClient(clt), WithName("Locator"))
	err := agent.Run(context.Background(), schema.NewString("Italy"), new(city), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent Locator")
}

func TestAgentHooks(t *testing.T) {
	clt := &fakeClient{err: errors.New("boom")}
	agent := NewAgent[schema.String, schema.String](WithClient(clt))
	var started, failed bool
	agent.SetStartHook(func(context.Context, *Agent[schema.String, schema.String], *schema.String) { started = true })
	agent.SetErrorHook(func(_ context.Context, _ *Agent[schema.String, schema.String], _ *schema.String, _ *components.LLMResponse, err error) {
		failed = err != nil
	})
	err := agent.Run(context.Background(), schema.NewString("hi"), new(schema.String), nil)
	assert.Error(t, err)
	assert.True(t, started)
	assert.True(t, failed)

	noClient := NewAgent[schema.String, schema.String]()
	assert.ErrorIs(t, noClient.Run(context.Background(), schema.NewString("hi"), new(schema.String), nil), ErrNoClient)
}

type stubSearcher struct {
	calls int
	err   error
}

func (s *stubSearcher) Search(_ context.Context, query string, _ any) ([]tools.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []tools.SearchResult{{Title: "Visit " + query, URL: "https://example.com/" + strings.ReplaceAll(query, " ", "-")}}, nil
}

func newSearchAgent(clt *fakeClient, searcher tools.Searcher) *ToolAgent[schema.String, tools.SearchInput, tools.SearchOutput, city] {
	start := NewAgent[schema.String, tools.SearchInput](WithClient(clt), WithName("Query"))
	end := NewAgent[schema.String, city](WithClient(clt), WithName("Locator"))
	return NewToolAgent(start, tools.Tool[tools.SearchInput, tools.SearchOutput](tools.NewSearchTool(searcher, 0)), end)
}

func TestToolAgentRun(t *testing.T) {
	clt := &fakeClient{replies: []string{
		`{"queries": ["best city in italy"], "max_results": "3"}`,
		`{"name": "Florence"}`,
	}}
	searcher := new(stubSearcher)
	agent := newSearchAgent(clt, searcher)
	out := new(city)
	resp := new(components.LLMResponse)
	trace, err := agent.Run(context.Background(), schema.NewString("Italy"), out, resp)
	require.NoError(t, err)
	assert.Equal(t, "Florence", out.Name)
	assert.Equal(t, 1, searcher.calls)
	require.NotNil(t, trace.Result)
	assert.Equal(t, []string{"best city in italy"}, trace.Call.Queries)
	assert.EqualValues(t, 20, resp.Usage.InputTokens)
	assert.Contains(t, clt.requests[1].Messages[0].Content, "## Web search results")
	assert.Contains(t, clt.requests[1].Messages[0].Content, "https://example.com/best-city-in-italy")
}

func TestToolAgentSoftFailure(t *testing.T) {
	clt := &fakeClient{replies: []string{
		`{"queries": ["italy"]}`,
		`{"name": "Rome"}`,
	}}
	agent := newSearchAgent(clt, &stubSearcher{err: tools.ErrSearchUnavailable})
	agent.SetSoftFailure(func(err error) bool { return errors.Is(err, tools.ErrSearchUnavailable) })
	out := new(city)
	trace, err := agent.Run(context.Background(), schema.NewString("Italy"), out, nil)
	require.NoError(t, err)
	assert.Equal(t, "Rome", out.Name)
	assert.ErrorIs(t, trace.ToolErr, tools.ErrSearchUnavailable)
	assert.Nil(t, trace.Result)
	assert.NotContains(t, clt.requests[1].Messages[0].Content, "## Web search results")
}

func TestToolAgentHardFailure(t *testing.T) {
	clt := &fakeClient{replies: []string{`{"queries": ["italy"]}`}}
	agent := newSearchAgent(clt, &stubSearcher{err: tools.ErrSearchUnavailable})
	_, err := agent.Run(context.Background(), schema.NewString("Italy"), new(city), nil)
	assert.ErrorIs(t, err, tools.ErrSearchUnavailable)
	assert.Len(t, clt.requests, 1)
}
