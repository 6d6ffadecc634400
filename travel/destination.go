package travel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bububa/itinerary-agents/components/systemprompt"
	"github.com/bububa/itinerary-agents/tools"
)

// SearchQueries is what the query agent asks the search tool for
type SearchQueries = tools.SearchInput

// Destination is the place the Travel Search agent settles on, with the highlights it found
type Destination struct {
	// Place is exactly one concrete city or area
	Place       string   `json:"place" jsonschema:"title=place,description=Exactly one concrete city or place to plan the trip around. If the user named a city use that city." validate:"required"`
	Country     string   `json:"country,omitempty" jsonschema:"title=country,description=Country of the place"`
	Reason      string   `json:"reason,omitempty" jsonschema:"title=reason,description=One sentence on why this place fits the request"`
	Areas       []string `json:"areas,omitempty" jsonschema:"title=areas,description=Famous cities or areas nearby worth including"`
	Attractions []string `json:"attractions,omitempty" jsonschema:"title=attractions,description=Notable attractions"`
	Activities  []string `json:"activities,omitempty" jsonschema:"title=activities,description=Activities to do"`
	Foods       []string `json:"foods,omitempty" jsonschema:"title=foods,description=Food items to try"`
}

var _ systemprompt.ContextProvider = (*Destination)(nil)

func (d Destination) String() string {
	bs, _ := json.Marshal(d)
	return string(bs)
}

func (d Destination) Title() string {
	return "Selected destination"
}

func (d Destination) Info() string {
	if d.Place == "" {
		return ""
	}
	var b strings.Builder
	place := d.Place
	if d.Country != "" && !strings.Contains(strings.ToLower(place), strings.ToLower(d.Country)) {
		place = fmt.Sprintf("%s, %s", d.Place, d.Country)
	}
	fmt.Fprintf(&b, "- Place: %s\n", place)
	if d.Reason != "" {
		fmt.Fprintf(&b, "- Why: %s\n", d.Reason)
	}
	writeList(&b, "Areas", d.Areas)
	writeList(&b, "Attractions", d.Attractions)
	writeList(&b, "Activities", d.Activities)
	writeList(&b, "Foods to try", d.Foods)
	return strings.TrimSpace(b.String())
}

// PlaceOnly returns a copy without the gathered highlights
func (d Destination) PlaceOnly() Destination {
	return Destination{Place: d.Place, Country: d.Country}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", title, strings.Join(items, "; "))
}
