package travel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/itinerary-agents/tools"
)

const (
	DefaultDays      = 5
	MinDays          = 1
	MaxDays          = 30
	DefaultSessionID = "default"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TripRequest is what a user asks for, from either input surface
type TripRequest struct {
	// Destination is a country, or a city if the user already knows it
	Destination string `json:"destination" validate:"required,max=200"`
	// Budget is free-form, e.g. "2000 USD" or "₹1,50,000"
	Budget    string `json:"budget,omitempty" validate:"max=100"`
	Days      int    `json:"days" validate:"min=1,max=30"`
	Interests string `json:"interests,omitempty" validate:"max=1000"`
	UseSearch bool   `json:"use_search"`
	// MaxResults is the per-query result hint, 0 means tools.DefaultMaxResults
	MaxResults int `json:"max_results,omitempty" validate:"min=1,max=25"`
	// Refinement asks the team to revise the previous itinerary of the session
	Refinement string `json:"refinement,omitempty" validate:"max=1000"`
	// APIKey overrides the configured model API key for this request
	APIKey    string `json:"-"`
	SessionID string `json:"session_id,omitempty"`
}

// Normalize trims text fields and fills defaults. It does not validate.
func (r *TripRequest) Normalize() {
	r.Destination = strings.TrimSpace(r.Destination)
	r.Budget = strings.TrimSpace(r.Budget)
	r.Interests = strings.TrimSpace(r.Interests)
	r.Refinement = strings.TrimSpace(r.Refinement)
	r.APIKey = strings.TrimSpace(r.APIKey)
	r.SessionID = strings.TrimSpace(r.SessionID)
	if r.MaxResults == 0 {
		r.MaxResults = tools.DefaultMaxResults
	}
	if r.SessionID == "" {
		r.SessionID = DefaultSessionID
	}
}

// Validate returns an ErrInvalidInput error naming the first bad field
func (r TripRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return &InputError{Field: fieldErrs[0].Field(), Tag: fieldErrs[0].Tag(), Message: fieldMessage(fieldErrs[0])}
}

// Task renders the request as the natural prompt sent to the team
func (r TripRequest) Task() string {
	var b strings.Builder
	budget := r.Budget
	if budget == "" {
		budget = "an unspecified amount"
	}
	fmt.Fprintf(&b, "I want to travel to %s with a budget of %s for %d days.", r.Destination, budget, r.Days)
	if r.Interests != "" {
		fmt.Fprintf(&b, " My interests are: %s.", strings.TrimRight(r.Interests, "."))
	}
	if r.UseSearch {
		fmt.Fprintf(&b, " If you search the web, keep results to about %d items per query.", r.MaxResults)
	} else {
		b.WriteString(" Do not use web results.")
	}
	if r.Refinement != "" {
		fmt.Fprintf(&b, " Please revise the previous itinerary: %s", r.Refinement)
	}
	return b.String()
}

// InputError is a validation failure on one TripRequest field
type InputError struct {
	Field   string
	Tag     string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Message)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Destination":
		if fe.Tag() == "required" {
			return "Please enter a country or city."
		}
		return "The destination is too long."
	case "Days":
		return fmt.Sprintf("Number of days must be between %d and %d.", MinDays, MaxDays)
	case "MaxResults":
		return fmt.Sprintf("Max web results must be between %d and %d.", tools.MinMaxResults, tools.MaxMaxResults)
	case "Budget":
		return "The budget is too long."
	case "Interests":
		return "The interests are too long."
	case "Refinement":
		return "The refinement is too long."
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}
