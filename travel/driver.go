package travel

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/bububa/itinerary-agents/components"
)

// RunResult is a generated itinerary
type RunResult struct {
	RunID    string              `json:"run_id"`
	Content  string              `json:"content"`
	Place    string              `json:"place,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
	Usage    components.LLMUsage `json:"usage"`
	Duration time.Duration       `json:"duration"`
}

// Stats are the driver counters since startup
type Stats struct {
	Runs            int64 `json:"runs"`
	Succeeded       int64 `json:"succeeded"`
	Failed          int64 `json:"failed"`
	SearchFallbacks int64 `json:"search_fallbacks"`
	InFlight        int64 `json:"in_flight"`
	Sessions        int   `json:"sessions"`
}

// Driver turns a TripRequest into a RunResult or a *Failure. It never panics.
type Driver struct {
	registry    *Registry
	sessions    *SessionStore
	defaultKey  string
	maxSessions int
	logger      *slog.Logger

	runs            *atomic.Int64
	succeeded       *atomic.Int64
	failed          *atomic.Int64
	searchFallbacks *atomic.Int64
	inFlight        *atomic.Int64
}

type DriverOption func(*Driver)

// WithDefaultCredential sets the API key used when a request carries none
func WithDefaultCredential(apiKey string) DriverOption {
	return func(d *Driver) {
		d.defaultKey = apiKey
	}
}

func WithSessionStore(store *SessionStore) DriverOption {
	return func(d *Driver) {
		d.sessions = store
	}
}

// WithMaxSessions bounds the sessions kept by the default store
func WithMaxSessions(n int) DriverOption {
	return func(d *Driver) {
		d.maxSessions = n
	}
}

func WithDriverLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = l
	}
}

func NewDriver(registry *Registry, opts ...DriverOption) *Driver {
	d := &Driver{
		registry:        registry,
		runs:            atomic.NewInt64(0),
		succeeded:       atomic.NewInt64(0),
		failed:          atomic.NewInt64(0),
		searchFallbacks: atomic.NewInt64(0),
		inFlight:        atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sessions == nil {
		d.sessions = NewSessionStore(registry.HistoryRuns(), d.maxSessions)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Run validates req and runs the matching team in the request session.
// The returned error is always a *Failure.
func (d *Driver) Run(ctx context.Context, req TripRequest) (result *RunResult, err error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := d.logger.With("run_id", runID)
	d.runs.Inc()
	d.inFlight.Inc()
	defer func() {
		d.inFlight.Dec()
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "run panicked", "panic", r, "stack", string(debug.Stack()))
			result, err = nil, fmt.Errorf("%w: panic: %v", ErrOrchestration, r)
		}
		if err != nil {
			failure := Classify(err)
			err = failure
			d.failed.Inc()
			logger.WarnContext(ctx, "run failed", "kind", failure.Kind, "detail", failure.Detail, "duration", time.Since(start))
			return
		}
		d.succeeded.Inc()
	}()

	req.Normalize()
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = d.defaultKey
	}
	if apiKey == "" {
		return nil, &Failure{Kind: MissingCredential, Message: missingCredentialMessage, Detail: ErrMissingCredential.Error()}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	team := d.registry.Team(req.UseSearch)
	sess := d.sessions.Get(req.SessionID)
	logger.InfoContext(ctx, "run started", "session", sess.ID, "team", team.Spec().Coordination, "days", req.Days)

	ctx = components.WithCredential(ctx, apiKey)
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	out, err := team.Run(ctx, req.Task(), req.Days, sess.memory)
	if err != nil {
		return nil, err
	}

	result = &RunResult{
		RunID:    runID,
		Content:  out.Content,
		Place:    req.Destination,
		Warnings: out.Warnings,
		Usage:    out.Usage,
	}
	if out.Destination != nil && out.Destination.Place != "" {
		result.Place = out.Destination.Place
	}
	if out.SearchErr != nil {
		d.searchFallbacks.Inc()
		result.Warnings = append([]string{searchUnavailableMessage}, result.Warnings...)
	}
	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "run finished", "session", sess.ID, "place", result.Place, "warnings", len(result.Warnings),
		"input_tokens", result.Usage.InputTokens, "output_tokens", result.Usage.OutputTokens, "duration", result.Duration)
	return result, nil
}

// ResetSession forgets the history of a session
func (d *Driver) ResetSession(id string) {
	if id == "" {
		id = DefaultSessionID
	}
	d.sessions.Reset(id)
}

// EndSession drops a session and its history
func (d *Driver) EndSession(id string) {
	d.sessions.Remove(id)
}

func (d *Driver) Registry() *Registry {
	return d.registry
}

func (d *Driver) Stats() Stats {
	return Stats{
		Runs:            d.runs.Load(),
		Succeeded:       d.succeeded.Load(),
		Failed:          d.failed.Load(),
		SearchFallbacks: d.searchFallbacks.Load(),
		InFlight:        d.inFlight.Load(),
		Sessions:        d.sessions.Len(),
	}
}
