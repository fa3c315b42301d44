// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayerDependencies
	SimilarityDependencies
	ImportDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	similarHandler *SimilarHandler
	importHandler  *ImportHandler

	corsOrigins []string
	rateLimit   int
	rateWindow  time.Duration
	extra       []func(chi.Router)
	logger      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by the CORS middleware.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRateLimit limits each client IP to requests per window. Zero
// requests disables limiting.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		if requests >= 0 && window > 0 {
			s.rateLimit = requests
			s.rateWindow = window
		}
	}
}

// WithRoutes registers additional routes, such as the API docs, on the router.
func WithRoutes(fn func(chi.Router)) Option {
	return func(s *Server) {
		if fn != nil {
			s.extra = append(s.extra, fn)
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		rateWindow:  time.Minute,
		logger:      logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.playersHandler = NewPlayersHandler(deps, s.logger)
	s.similarHandler = NewSimilarHandler(deps, s.logger)
	s.importHandler = NewImportHandler(deps, s.logger)
	return s
}

// Handler builds the router with every route and the global middleware.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, totalCountHeader},
		MaxAge:         300,
	}))
	if s.rateLimit > 0 {
		r.Use(httprate.Limit(s.rateLimit, s.rateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate_limited", nil)
			}),
		))
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
		r.Get("/players/top", MetricsMiddleware(s.playersHandler.HandleTop, "players_top"))
		r.Get("/players/{id}", MetricsMiddleware(s.playersHandler.HandleGet, "player"))
		r.Get("/players/{id}/similar", MetricsMiddleware(s.similarHandler.HandleSimilar, "similar"))
		r.Get("/players/{a}/compare/{b}", MetricsMiddleware(s.similarHandler.HandleCompare, "compare"))
		r.Post("/import", MetricsMiddleware(s.importHandler.HandleSubmit, "import"))
		r.Get("/import/{id}", MetricsMiddleware(s.importHandler.HandleStatus, "import_status"))
		r.Get("/import-data", MetricsMiddleware(s.importHandler.HandleImportData, "import_data"))
	})

	for _, fn := range s.extra {
		fn(r)
	}

	s.logger.Debug(ctx, "routes registered")
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and code and writes it. Server-side
// failures are logged with the request id.
func writeFailure(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("status", strconv.Itoa(status)),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// classify translates upstream errors to an HTTP status and error code.
func classify(err error) (int, string) {
	var attrErr *similarity.AttributeError
	switch {
	case errors.As(err, &attrErr), errors.Is(err, similarity.ErrInvalidAttribute):
		return http.StatusBadRequest, "invalid_attribute"
	case errors.Is(err, similarity.ErrEmptyAttributeSet):
		return http.StatusBadRequest, "empty_attribute_set"
	case errors.Is(err, similarity.ErrNotFound), errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, similarity.ErrInvalidWeights),
		errors.Is(err, similarity.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrNoSource),
		errors.Is(err, service.ErrSourceDenied),
		errors.Is(err, service.ErrEmptyImport):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, similarity.ErrDataUnavailable):
		return http.StatusServiceUnavailable, "data_unavailable"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
