package rest

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brainquest-hub/brainquest-progress-hub/config"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Server is the HTTP front of the progress engine.
type Server struct {
	httpServer  *http.Server
	rateLimiter *RateLimiter
	stopCleanup chan struct{}
	logger      *slog.Logger
}

// NewServer assembles the router and middleware chain.
func NewServer(
	cfg config.HTTPConfig,
	metricsEnabled bool,
	activity *ActivityHandler,
	board *LeaderboardHandler,
	stream *StreamHandler,
	healthChecks map[string]HealthChecker,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.RateLimitBurst),
		stopCleanup: make(chan struct{}),
		logger:      logger.With("component", "http_server"),
	}

	r := mux.NewRouter()

	// Websocket upgrade bypasses the standard middleware chain: hijacked
	// connections do not mix with the wrapping response writers.
	r.HandleFunc("/ws/leaderboard", stream.Subscribe)

	standard := r.PathPrefix("/").Subrouter()
	standard.Use(s.rateLimiter.Middleware)
	if metricsEnabled {
		RegisterMetrics()
		standard.Use(MonitorMiddleware)
		standard.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	standard.HandleFunc("/healthz", s.healthHandler(healthChecks)).Methods("GET")

	api := standard.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/activity", activity.RecordActivity).Methods("POST")
	api.HandleFunc("/progress/{ownerId}", activity.GetWeeklyProgress).Methods("GET")
	api.HandleFunc("/identity/{ownerId}", activity.GetIdentity).Methods("GET")
	api.HandleFunc("/leaderboard/top", board.GetTop).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(AdminAuthMiddleware(cfg.AdminKeyHash))
	admin.HandleFunc("/leaderboard/rebuild", board.Rebuild).Methods("POST")

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "X-Admin-Key"}),
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      cors(gorillaHandlers.LoggingHandler(os.Stdout, r)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Start begins serving. It blocks until the listener fails or the server
// is shut down.
func (s *Server) Start() error {
	go s.rateLimiter.Cleanup(3*time.Minute, s.stopCleanup)

	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopCleanup)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "healthy"}
		healthy := true
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				status[name] = err.Error()
				healthy = false
			} else {
				status[name] = "ok"
			}
		}

		if !healthy {
			status["status"] = "unhealthy"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
