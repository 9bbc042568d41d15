// Package server serves the mining web page and JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/logging"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

// Config holds server settings.
type Config struct {
	Addr          string
	RateLimit     int     // requests per minute per client IP; 0 disables
	MinSupport    float64 // pre-filled on the page
	MinConfidence float64 // fixed for the page; the API accepts its own
	MaxLen        int
	Workers       int
}

// Server mines one dataset on request.
type Server struct {
	cfg    Config
	name   string
	ds     *apriori.Dataset
	tmpl   *template.Template
	router chi.Router
}

// New creates a server for ds, shown on the page under name.
func New(cfg Config, name string, ds *apriori.Dataset) (*Server, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset cannot be nil")
	}
	if cfg.MinSupport == 0 {
		cfg.MinSupport = 0.3
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.7
	}

	tmpl, err := template.ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{cfg: cfg, name: name, ds: ds, tmpl: tmpl}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Get("/", s.handleIndex)
		r.Post("/", s.handleIndexSubmit)
		r.Post("/api/mine", s.handleMine)
	})

	return r
}

// requestLogger tags the request context with its ID and logs completion.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithRequestID(r.Context(), chimiddleware.GetReqID(r.Context()))
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr).Str("dataset", s.name).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logging.Info().Msg("server stopped")
	return nil
}
