package travel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripRequestTask(t *testing.T) {
	tests := []struct {
		name string
		req  TripRequest
		want string
	}{
		{
			name: "with search and interests",
			req:  TripRequest{Destination: "Italy", Budget: "2000 USD", Days: 5, Interests: "history, food", UseSearch: true, MaxResults: 5},
			want: "I want to travel to Italy with a budget of 2000 USD for 5 days. My interests are: history, food. If you search the web, keep results to about 5 items per query.",
		},
		{
			name: "without search",
			req:  TripRequest{Destination: "Kyoto", Budget: "₹1,50,000", Days: 3},
			want: "I want to travel to Kyoto with a budget of ₹1,50,000 for 3 days. Do not use web results.",
		},
		{
			name: "refinement",
			req:  TripRequest{Destination: "Kyoto", Budget: "800 USD", Days: 2, Refinement: "swap day 2 for Nara."},
			want: "I want to travel to Kyoto with a budget of 800 USD for 2 days. Do not use web results. Please revise the previous itinerary: swap day 2 for Nara.",
		},
		{
			name: "no budget",
			req:  TripRequest{Destination: "Lisbon", Days: 2},
			want: "I want to travel to Lisbon with a budget of an unspecified amount for 2 days. Do not use web results.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Task())
		})
	}
}

func TestTripRequestNormalize(t *testing.T) {
	req := TripRequest{Destination: "  Italy ", Days: 5, APIKey: " key "}
	req.Normalize()
	assert.Equal(t, "Italy", req.Destination)
	assert.Equal(t, "key", req.APIKey)
	assert.Equal(t, 5, req.MaxResults)
	assert.Equal(t, DefaultSessionID, req.SessionID)
	assert.NoError(t, req.Validate())
}

func TestTripRequestValidate(t *testing.T) {
	tests := []struct {
		name  string
		req   TripRequest
		field string
	}{
		{name: "empty destination", req: TripRequest{Days: 5, MaxResults: 5}, field: "Destination"},
		{name: "zero days", req: TripRequest{Destination: "Italy", MaxResults: 5}, field: "Days"},
		{name: "too many days", req: TripRequest{Destination: "Italy", Days: 31, MaxResults: 5}, field: "Days"},
		{name: "too many results", req: TripRequest{Destination: "Italy", Days: 3, MaxResults: 26}, field: "MaxResults"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
			assert.NotEmpty(t, inputErr.Message)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	f := Classify(errors.New("model exploded"))
	assert.Equal(t, OrchestrationFailure, f.Kind)
	assert.Equal(t, "Something went wrong while generating your itinerary.", f.Message)
	assert.Equal(t, "model exploded", f.Detail)
	assert.ErrorIs(t, f, ErrOrchestration)

	f = Classify(TripRequest{Days: 5, MaxResults: 5}.Validate())
	assert.Equal(t, InvalidInput, f.Kind)
	assert.Equal(t, "Please enter a country or city.", f.Message)
	assert.ErrorIs(t, f, ErrInvalidInput)

	f = Classify(ErrSearchUnavailable)
	assert.Equal(t, SearchUnavailable, f.Kind)
	assert.ErrorIs(t, f, ErrSearchUnavailable)

	assert.Same(t, f, Classify(f))
}
