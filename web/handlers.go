package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bububa/itinerary-agents/tools"
	"github.com/bububa/itinerary-agents/travel"
)

// formValues are the sticky values of the form
type formValues struct {
	Destination string
	Budget      string
	Days        int
	Interests   string
	UseSearch   bool
	MaxResults  int
}

type resultView struct {
	RunID    string
	Place    string
	HTML     template.HTML
	Warnings []string
	Duration time.Duration
}

type pageData struct {
	Form          formValues
	Result        *resultView
	Failure       *travel.Failure
	HasDefaultKey bool
}

func defaultForm() formValues {
	return formValues{
		Days:       travel.DefaultDays,
		UseSearch:  true,
		MaxResults: tools.DefaultMaxResults,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	data.HasDefaultKey = s.hasDefaultKey
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sessionID(w, r)
	s.render(w, http.StatusOK, pageData{Form: defaultForm()})
}

func (s *Server) handleItinerary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{
			Form:    defaultForm(),
			Failure: &travel.Failure{Kind: travel.InvalidInput, Message: "The form could not be read.", Detail: err.Error()},
		})
		return
	}
	form := formValues{
		Destination: r.PostFormValue("destination"),
		Budget:      r.PostFormValue("budget"),
		Days:        formInt(r, "days", travel.DefaultDays),
		Interests:   r.PostFormValue("interests"),
		UseSearch:   r.PostFormValue("use_search") != "",
		MaxResults:  formInt(r, "max_results", tools.DefaultMaxResults),
	}
	req := travel.TripRequest{
		Destination: form.Destination,
		Budget:      form.Budget,
		Days:        form.Days,
		Interests:   form.Interests,
		UseSearch:   form.UseSearch,
		MaxResults:  form.MaxResults,
		APIKey:      r.PostFormValue("api_key"),
		SessionID:   s.sessionID(w, r),
	}
	res, failure := s.run(r.Context(), req)
	if failure != nil {
		s.render(w, statusFor(failure.Kind), pageData{Form: form, Failure: failure})
		return
	}
	s.render(w, http.StatusOK, pageData{
		Form: form,
		Result: &resultView{
			RunID:    res.RunID,
			Place:    res.Place,
			HTML:     template.HTML(s.md.RenderToString([]byte(res.Content))),
			Warnings: res.Warnings,
			Duration: res.Duration.Round(time.Millisecond),
		},
	})
}

// apiRequest is the JSON body of POST /api/itinerary. The API key travels in a header.
// Without a session_id the request runs in a throwaway session and keeps no history.
type apiRequest struct {
	Destination string `json:"destination"`
	Budget      string `json:"budget"`
	Days        *int   `json:"days"`
	Interests   string `json:"interests"`
	UseSearch   *bool  `json:"use_search"`
	MaxResults  int    `json:"max_results"`
	Refinement  string `json:"refinement"`
	SessionID   string `json:"session_id"`
}

func (s *Server) handleAPIItinerary(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[apiRequest](w, r)
	if !ok {
		return
	}
	useSearch := true
	if body.UseSearch != nil {
		useSearch = *body.UseSearch
	}
	req := travel.TripRequest{
		Destination: body.Destination,
		Budget:      body.Budget,
		Days:        travel.DefaultDays,
		Interests:   body.Interests,
		UseSearch:   useSearch,
		MaxResults:  body.MaxResults,
		Refinement:  body.Refinement,
		APIKey:      bearerToken(r),
		SessionID:   body.SessionID,
	}
	if body.Days != nil {
		req.Days = *body.Days
	}
	ephemeral := req.SessionID == ""
	if ephemeral {
		req.SessionID = uuid.NewString()
	}
	res, failure := s.run(r.Context(), req)
	if ephemeral {
		s.driver.EndSession(req.SessionID)
	}
	if failure != nil {
		writeFailure(w, failure)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.driver.ResetSession(s.sessionID(w, r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.driver.Stats())
}

// run bounds the driver call by the request timeout
func (s *Server) run(ctx context.Context, req travel.TripRequest) (*travel.RunResult, *travel.Failure) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	res, err := s.driver.Run(ctx, req)
	if err != nil {
		var failure *travel.Failure
		if !errors.As(err, &failure) {
			failure = travel.Classify(err)
		}
		return nil, failure
	}
	return res, nil
}
