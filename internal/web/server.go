// Package web serves the character knowledge facade as a JSON HTTP API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/profile"
)

// Server serves the JSON API.
type Server struct {
	Knowledge *knowledge.Service
	Profiles  *profile.Manager
	Addr      string
	Logger    *slog.Logger
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "GET /api/characters/{char}", s.handleCharacter)
	s.route(mux, "GET /api/characters/{char}/analysis", s.handleAnalysis)
	s.route(mux, "GET /api/characters/{char}/evolution", s.handleEvolution)
	s.route(mux, "GET /api/characters/{char}/related", s.handleRelated)
	s.route(mux, "GET /api/lookup/{char}", s.handleLookup)
	s.route(mux, "GET /api/recommendations", s.handleRecommendations)
	s.route(mux, "GET /api/profile", s.handleProfile)
	s.route(mux, "PATCH /api/profile", s.handleUpdateProfile)
	s.route(mux, "POST /api/profile/learned", s.handleLearned)

	return mux
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger().Info("serving", "addr", "http://"+s.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// route registers h under pattern with tracing and request logging.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	tracer := otel.Tracer("github.com/gatzby-git/shuowenjiezi/internal/web")
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, pattern,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.target", r.URL.Path)))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		s.logger().Debug("request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
