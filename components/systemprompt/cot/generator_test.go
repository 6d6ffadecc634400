package cot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bububa/itinerary-agents/components/systemprompt"
)

func Example_travelPlanner() {
	g := New(
		WithBackground([]string{
			"- Your name is 'Itinerary Planner'.",
			"- Create a detailed, day-wise itinerary for a given destination, budget, and duration.",
		}),
		WithSteps([]string{"- Read the destination research if present.", "- Plan one section per day."}),
		WithOutputInstructs([]string{"- Use markdown headings."}),
	)
	fmt.Println(g.Generate(systemprompt.NewStaticProvider("Destination", "- Florence, Italy")))
	// Output:
	// # IDENTITY and PURPOSE
	// - Your name is 'Itinerary Planner'.
	// - Create a detailed, day-wise itinerary for a given destination, budget, and duration.
	//
	// # INTERNAL ASSISTANT STEPS
	// - Read the destination research if present.
	// - Plan one section per day.
	//
	// # OUTPUT INSTRUCTIONS
	// - Use markdown headings.
	// - Always use the available additional information and context to enhance the response.
	//
	// # EXTRA INFORMATION AND CONTEXT
	// ## Destination
	// - Florence, Italy
}

func TestGenerateExtraProvidersArePerCall(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	g := New(WithContextProviders(systemprompt.NewDatetimeProvider(clock)))

	withExtra := g.Generate(systemprompt.NewStaticProvider("Search results", "- Uffizi Gallery"))
	assert.True(t, strings.Contains(withExtra, "## Search results"))
	assert.True(t, strings.Contains(withExtra, "2026-10-19 09:30 UTC (Monday)"))

	plain := g.Generate()
	assert.False(t, strings.Contains(plain, "Search results"))
	assert.True(t, strings.Contains(plain, "## Current date and time"))
}

func TestGenerateSkipsEmptyProviders(t *testing.T) {
	g := New()
	out := g.Generate(systemprompt.NewStaticProvider("Empty", ""), nil)
	assert.False(t, strings.Contains(out, "EXTRA INFORMATION AND CONTEXT"))
}

func TestRemoveContextProviders(t *testing.T) {
	g := New(WithContextProviders(
		systemprompt.NewStaticProvider("a", "1"),
		systemprompt.NewStaticProvider("b", "2"),
	))
	g.RemoveContextProviders("a")
	_, err := g.ContextProvider("a")
	assert.Error(t, err)
	p, err := g.ContextProvider("b")
	assert.NoError(t, err)
	assert.Equal(t, "2", p.Info())
}
