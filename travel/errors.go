package travel

import (
	"errors"
	"fmt"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/tools"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidInput      = errors.New("invalid input")
	ErrOrchestration     = errors.New("orchestration failure")
	// ErrSearchUnavailable is the search tool sentinel, re-exported for callers of this package
	ErrSearchUnavailable = tools.ErrSearchUnavailable
)

// Kind classifies a Failure
type Kind string

const (
	MissingCredential    Kind = "MissingCredential"
	InvalidInput         Kind = "InvalidInput"
	SearchUnavailable    Kind = "SearchUnavailable"
	OrchestrationFailure Kind = "OrchestrationFailure"
)

const (
	missingCredentialMessage = "Please provide your GROQ_API_KEY."
	searchUnavailableMessage = "Web search was unavailable, so the itinerary was planned without live search results."
	orchestrationMessage     = "Something went wrong while generating your itinerary."
)

func (k Kind) sentinel() error {
	switch k {
	case MissingCredential:
		return ErrMissingCredential
	case InvalidInput:
		return ErrInvalidInput
	case SearchUnavailable:
		return ErrSearchUnavailable
	}
	return ErrOrchestration
}

// Failure is the error a run reports to an input surface.
// Message is safe to show to users, Detail is the diagnostic text.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

func (f *Failure) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind.sentinel()}
	}
	return []error{f.Kind.sentinel(), f.Err}
}

// Classify maps any run error to a Failure
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		return &Failure{Kind: InvalidInput, Message: inputErr.Message, Detail: err.Error(), Err: err}
	case errors.Is(err, ErrInvalidInput):
		return &Failure{Kind: InvalidInput, Message: "The request is invalid.", Detail: err.Error(), Err: err}
	case errors.Is(err, ErrMissingCredential), errors.Is(err, components.ErrNoCredential):
		return &Failure{Kind: MissingCredential, Message: missingCredentialMessage, Detail: err.Error(), Err: err}
	case errors.Is(err, ErrSearchUnavailable):
		return &Failure{Kind: SearchUnavailable, Message: searchUnavailableMessage, Detail: err.Error(), Err: err}
	}
	return &Failure{Kind: OrchestrationFailure, Message: orchestrationMessage, Detail: err.Error(), Err: err}
}
