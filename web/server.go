// Package web serves the itinerary form and its JSON twin.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gitlab.com/golang-commonmark/markdown"

	"github.com/bububa/itinerary-agents/travel"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server is the web form surface
type Server struct {
	driver         *travel.Driver
	logger         *slog.Logger
	md             *markdown.Markdown
	requestTimeout time.Duration
	secureCookie   bool
	hasDefaultKey  bool
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRequestTimeout bounds one itinerary run
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

// WithDefaultKey tells the form a configured API key exists, so the key field is optional
func WithDefaultKey(ok bool) Option {
	return func(s *Server) {
		s.hasDefaultKey = ok
	}
}

func New(driver *travel.Driver, opts ...Option) *Server {
	s := &Server{
		driver:         driver,
		requestTimeout: 3 * time.Minute,
		// raw HTML in model output is escaped, not rendered
		md: markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Tables(true)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the chi router with every route mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestContext)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)

	r.Get("/", s.handleIndex)
	r.Post("/itinerary", s.handleItinerary)
	r.Post("/session/reset", s.handleResetSession)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/itinerary", s.handleAPIItinerary)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
