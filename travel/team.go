package travel

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/bububa/itinerary-agents/agents"
	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/schema"
)

var dayHeading = regexp.MustCompile(`(?i)^day\s+\d+\b`)

// Team runs the Locate then Plan pipeline.
// Locate runs only for LocateThenPlan teams. The planner never searches.
type Team struct {
	spec    TeamSpec
	search  *SearchAgent
	planner *PlannerAgent
	logger  *slog.Logger
}

// TeamResult is the outcome of one team run
type TeamResult struct {
	Content     string
	Destination *Destination
	Usage       components.LLMUsage
	// SearchErr is the soft search failure the run continued past
	SearchErr error
	Warnings  []string
}

func newTeam(spec TeamSpec, search *SearchAgent, planner *PlannerAgent, logger *slog.Logger) *Team {
	return &Team{
		spec:    spec,
		search:  search,
		planner: planner,
		logger:  logger,
	}
}

func (t *Team) Spec() TeamSpec {
	return t.spec
}

func (t *Team) Planner() *PlannerAgent {
	return t.planner
}

// TravelSearch returns the Locate stage agent, nil for PlanOnly teams
func (t *Team) TravelSearch() *SearchAgent {
	return t.search
}

// Run executes the pipeline for task. History is read from memory and, on success,
// the exchange (task, final markdown) is appended to it. The caller serializes runs
// that share a memory.
func (t *Team) Run(ctx context.Context, task string, days int, memory *components.Memory) (*TeamResult, error) {
	var history []components.Message
	if memory != nil {
		history = memory.History()
	}
	var (
		result = new(TeamResult)
		resp   = new(components.LLMResponse)
		input  = schema.NewString(task)
		opts   = []agents.RunOption{agents.WithHistory(history)}
	)
	if t.spec.Coordination == LocateThenPlan && t.search != nil {
		dest := new(Destination)
		trace, err := t.search.Run(ctx, input, dest, resp, opts...)
		if err != nil {
			return nil, fmt.Errorf("locate: %w", err)
		}
		if trace.ToolErr != nil {
			result.SearchErr = trace.ToolErr
			t.logger.WarnContext(ctx, "search failed, continuing without results", "team", t.spec.Name, "error", trace.ToolErr)
		}
		t.logger.DebugContext(ctx, "destination selected", "team", t.spec.Name, "place", dest.Place)
		result.Destination = dest
		if t.spec.ShareMemberInteractions {
			opts = append(opts, agents.WithContextProviders(*dest))
		} else {
			opts = append(opts, agents.WithContextProviders(dest.PlaceOnly()))
		}
	}
	plan := new(schema.String)
	if err := t.planner.Run(ctx, input, plan, resp, opts...); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Content = strings.TrimSpace(plan.String())
	if result.Content == "" {
		return nil, fmt.Errorf("plan: %w", schema.ErrEmptyContent)
	}
	if resp.Usage != nil {
		result.Usage = *resp.Usage
	}
	if n := CountDayHeadings(result.Content); days > 0 && n != days {
		result.Warnings = append(result.Warnings, fmt.Sprintf("The itinerary has %d day sections, %d were requested.", n, days))
	}
	if memory != nil {
		memory.AddTurn(
			*components.NewMessage(components.UserRole, task),
			*components.NewMessage(components.AssistantRole, result.Content),
		)
	}
	return result, nil
}

// CountDayHeadings counts markdown headings that start with "Day N"
func CountDayHeadings(content string) int {
	md := markdown.New()
	tokens := md.Parse([]byte(content))
	var n int
	for idx, tok := range tokens {
		if _, ok := tok.(*markdown.HeadingOpen); !ok || idx+1 >= len(tokens) {
			continue
		}
		inline, ok := tokens[idx+1].(*markdown.Inline)
		if !ok {
			continue
		}
		text := strings.TrimLeft(inline.Content, "*_ ")
		if dayHeading.MatchString(text) {
			n++
		}
	}
	return n
}
