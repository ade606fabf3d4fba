// Package api serves the local HTTP bridge an out-of-process UI shell uses
// to read the facade view and dispatch actions.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vitrinaapp/vitrina-store/internal/auth"
	"github.com/vitrinaapp/vitrina-store/internal/facade"
	"github.com/vitrinaapp/vitrina-store/internal/ratelimit"
	"github.com/vitrinaapp/vitrina-store/internal/sse"
)

// Options tunes the bridge.
type Options struct {
	AllowedOrigins []string

	// Limiter throttles action dispatch per client IP. Nil disables it.
	Limiter *ratelimit.KeyedRateLimiter
}

// Server holds the bridge's dependencies and router.
type Server struct {
	facade  *facade.Facade
	tokens  *auth.TokenService
	events  *sse.Manager
	stream  *sse.Handler
	limiter *ratelimit.KeyedRateLimiter
	router  *chi.Mux
	logger  *slog.Logger
}

// NewServer creates a bridge server with all routes configured.
func NewServer(f *facade.Facade, tokens *auth.TokenService, events *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		facade:  f,
		tokens:  tokens,
		events:  events,
		limiter: opts.Limiter,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.stream = sse.NewHandler(events, func() any { return f.State() }, logger)

	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/state", s.handleGetState)
		r.Get("/actions", s.handleListActions)
		r.With(s.rateLimit).Post("/actions/{name}", s.handleDispatch)

		// Streams are long-lived; no compression or timeouts here.
		r.Get("/stream", s.stream.ServeHTTP)
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("bridge request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
