package travel

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bububa/itinerary-agents/agents"
	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/components/systemprompt"
	"github.com/bububa/itinerary-agents/components/systemprompt/cot"
	"github.com/bububa/itinerary-agents/schema"
	"github.com/bububa/itinerary-agents/tools"
)

type (
	// PlannerAgent writes the markdown itinerary
	PlannerAgent = agents.Agent[schema.String, schema.String]
	// SearchAgent turns the task into queries, searches, and picks a Destination
	SearchAgent = agents.ToolAgent[schema.String, SearchQueries, tools.SearchOutput, Destination]
)

// Registry builds every agent and team once. After NewRegistry returns it is read-only
// and may be shared by concurrent runs.
type Registry struct {
	planner *PlannerAgent
	search  *SearchAgent
	// teams is indexed by useSearch
	teams       map[bool]*Team
	historyRuns int
}

type RegistryOption func(*registryConfig)

type registryConfig struct {
	model         string
	temperature   float32
	maxTokens     int
	maxQueries    int
	historyRuns   int
	shareFindings bool
	now           func() time.Time
	logger        *slog.Logger
}

func WithModel(model string) RegistryOption {
	return func(c *registryConfig) {
		c.model = model
	}
}

func WithTemperature(temperature float32) RegistryOption {
	return func(c *registryConfig) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) RegistryOption {
	return func(c *registryConfig) {
		c.maxTokens = maxTokens
	}
}

// WithMaxQueries caps the queries one Travel Search run may send
func WithMaxQueries(n int) RegistryOption {
	return func(c *registryConfig) {
		c.maxQueries = n
	}
}

// WithHistoryRuns sets how many past exchanges each session keeps
func WithHistoryRuns(n int) RegistryOption {
	return func(c *registryConfig) {
		c.historyRuns = n
	}
}

// WithShareMemberInteractions decides whether the planner sees everything the Travel
// Search agent gathered or only the chosen place
func WithShareMemberInteractions(share bool) RegistryOption {
	return func(c *registryConfig) {
		c.shareFindings = share
	}
}

// WithClock replaces time.Now in the datetime context
func WithClock(now func() time.Time) RegistryOption {
	return func(c *registryConfig) {
		c.now = now
	}
}

func WithLogger(l *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = l
	}
}

// NewRegistry builds both teams around a chat client and a searcher
func NewRegistry(client components.ChatClient, searcher tools.Searcher, opts ...RegistryOption) *Registry {
	cfg := &registryConfig{
		model:         DefaultModel,
		historyRuns:   DefaultHistoryRuns,
		shareFindings: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.historyRuns < 0 {
		cfg.historyRuns = 0
	}
	datetime := systemprompt.NewDatetimeProvider(cfg.now)

	plannerDef := plannerSpec(cfg.model, cfg.temperature)
	searchDef := travelSearchSpec(cfg.model, cfg.temperature)

	planner := agents.NewAgent[schema.String, schema.String](
		agentOptions(client, plannerDef, cfg, datetime,
			[]string{
				"- Read the destination, budget, duration and interests from the request.",
				"- Use the selected destination and its highlights when they are provided.",
				"- Split the budget across the days, then fill each day with places, activities and food.",
				"- Finish with a short list of cost-saving tips.",
			},
			[]string{"- Answer in markdown only, with no preamble."},
		)...,
	)

	queryName := searchDef.Name + " queries"
	queryDef := searchDef
	queryDef.Name = queryName
	queryDef.Role = "Write web search queries that find travel highlights for the request."
	query := agents.NewAgent[schema.String, SearchQueries](
		agentOptions(client, queryDef, cfg, datetime,
			[]string{
				"- Identify the country or city in the request.",
				"- Write 1 to 3 short web search queries about famous places, activities, and food there.",
			},
			[]string{
				"- If you pass max_results, pass it as a number (e.g. 5).",
				"- Use the result count the request asks for when it gives one.",
			},
		)...,
	)
	locate := agents.NewAgent[schema.String, Destination](
		agentOptions(client, searchDef, cfg, datetime,
			[]string{
				"- Read the web search results in the context, if any.",
				"- Pick exactly one concrete place that best fits the request.",
				"- Collect areas, attractions, activities, and food for that place.",
			},
			nil,
		)...,
	)
	searchTool := tools.NewSearchTool(searcher, cfg.maxQueries, tools.WithTitle(SearchToolName))
	search := agents.NewToolAgent(query, tools.Tool[SearchQueries, tools.SearchOutput](searchTool), locate).
		SetSoftFailure(isSoftSearchFailure)

	r := &Registry{
		planner:     planner,
		search:      search,
		historyRuns: cfg.historyRuns,
	}
	r.teams = map[bool]*Team{
		true: newTeam(TeamSpec{
			Name:                    TeamName,
			Members:                 []AgentSpec{searchDef, plannerDef},
			Coordination:            LocateThenPlan,
			HistoryRuns:             cfg.historyRuns,
			ShareMemberInteractions: cfg.shareFindings,
		}, search, planner, cfg.logger),
		false: newTeam(TeamSpec{
			Name:                    TeamName,
			Members:                 []AgentSpec{plannerDef},
			Coordination:            PlanOnly,
			HistoryRuns:             cfg.historyRuns,
			ShareMemberInteractions: cfg.shareFindings,
		}, nil, planner, cfg.logger),
	}
	return r
}

// Team returns the prebuilt team for the search toggle
func (r *Registry) Team(useSearch bool) *Team {
	return r.teams[useSearch]
}

func (r *Registry) Planner() *PlannerAgent {
	return r.planner
}

func (r *Registry) TravelSearch() *SearchAgent {
	return r.search
}

// HistoryRuns returns how many past exchanges a session keeps
func (r *Registry) HistoryRuns() int {
	return r.historyRuns
}

func agentOptions(client components.ChatClient, def AgentSpec, cfg *registryConfig, datetime systemprompt.ContextProvider, steps []string, outputs []string) []agents.Option {
	background := append([]string{
		fmt.Sprintf("- You are %s.", def.Name),
		fmt.Sprintf("- Role: %s", def.Role),
	}, def.Instructions...)
	return []agents.Option{
		agents.WithClient(client),
		agents.WithName(def.Name),
		agents.WithModel(def.Model),
		agents.WithTemperature(def.Temperature),
		agents.WithMaxTokens(cfg.maxTokens),
		agents.WithLogger(cfg.logger),
		agents.WithSystemPromptGenerator(cot.New(
			cot.WithBackground(background),
			cot.WithSteps(steps),
			cot.WithOutputInstructs(outputs),
			cot.WithContextProviders(datetime),
		)),
	}
}

// isSoftSearchFailure reports tool errors the pipeline continues past
func isSoftSearchFailure(err error) bool {
	return errors.Is(err, tools.ErrSearchUnavailable) || errors.Is(err, tools.ErrInvalidParameter)
}
