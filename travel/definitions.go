package travel

// AgentSpec describes one agent of the team
type AgentSpec struct {
	Name         string   `json:"name" yaml:"name"`
	Model        string   `json:"model" yaml:"model"`
	Temperature  float32  `json:"temperature" yaml:"temperature"`
	Role         string   `json:"role" yaml:"role"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Tools        []string `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// Coordination is the turn-taking policy of a team
type Coordination string

const (
	// LocateThenPlan runs the Travel Search agent, then the Itinerary Planner
	LocateThenPlan Coordination = "locate-then-plan"
	// PlanOnly runs the Itinerary Planner alone
	PlanOnly Coordination = "plan-only"
)

// TeamSpec describes a team: ordered members and how they take turns
type TeamSpec struct {
	Name         string       `json:"name" yaml:"name"`
	Members      []AgentSpec  `json:"members" yaml:"members"`
	Coordination Coordination `json:"coordination" yaml:"coordination"`
	// HistoryRuns is how many past exchanges of a session are replayed to the agents
	HistoryRuns int `json:"history_runs" yaml:"history_runs"`
	// ShareMemberInteractions passes everything the Travel Search agent found to the
	// planner, not just the chosen place
	ShareMemberInteractions bool `json:"share_member_interactions" yaml:"share_member_interactions"`
}

const (
	PlannerName      = "Itinerary Planner"
	TravelSearchName = "Travel Search"
	TeamName         = "Travel Advisor"
	SearchToolName   = "WebSearchTool"

	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultHistoryRuns = 5
)

func plannerSpec(model string, temperature float32) AgentSpec {
	return AgentSpec{
		Name:        PlannerName,
		Model:       model,
		Temperature: temperature,
		Role:        "Create a detailed, day-wise itinerary for a given destination, budget, and duration.",
		Instructions: []string{
			"- You are an itinerary planner agent.",
			"- Produce a detailed **day-wise** itinerary with places to visit, activities, and food to try.",
			"- Write exactly one `## Day N` heading per day, from Day 1 to the last day, in chronological order.",
			"- Be explicit about budget allocation for every day and add cost-saving tips.",
			"- Prefer structured markdown with headings and bullet points.",
			"- If a selected destination is given in the context, plan the trip around that place.",
		},
	}
}

func travelSearchSpec(model string, temperature float32) AgentSpec {
	return AgentSpec{
		Name:        TravelSearchName,
		Model:       model,
		Temperature: temperature,
		Role:        "Search the web for travel information and pick one concrete place to visit.",
		Instructions: []string{
			"- Use the web search results to gather **current** highlights for the given country or city.",
			"- Return famous cities/areas, notable attractions, activities, and food items.",
			"- Report exactly one concrete place. If the user already named a city, report that city.",
			"- Keep outputs concise and actionable for itinerary planning.",
		},
		Tools: []string{SearchToolName},
	}
}
