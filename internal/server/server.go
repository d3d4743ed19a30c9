package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/panel-peace/internal/config"
	"github.com/jonathan/panel-peace/internal/db"
	"github.com/jonathan/panel-peace/internal/metrics"
	"github.com/jonathan/panel-peace/internal/server/middleware"
	"github.com/jonathan/panel-peace/internal/server/ratelimit"
	"github.com/jonathan/panel-peace/internal/views"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	closeStore  func()
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validator   *validator.Validate
	metrics     *metrics.Metrics
	now         func() time.Time
	upcoming    time.Duration
}

// Config holds server configuration
type Config struct {
	Port         int
	DatabaseURL  string
	UpcomingDays int
}

// Options wires a Server to its collaborators. Zero values fall back to
// environment configuration or defaults.
type Options struct {
	Port         int
	UpcomingDays int
	JWT          *config.JWTConfig
	Password     *config.PasswordConfig
	RateLimit    *ratelimit.Config
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

// New connects to the database and creates a server configured from the
// environment.
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := NewWithStore(database, Options{Port: cfg.Port, UpcomingDays: cfg.UpcomingDays})
	if err != nil {
		database.Close()
		return nil, err
	}
	s.closeStore = database.Close
	return s, nil
}

// NewWithStore creates a server backed by store.
func NewWithStore(store Store, opts Options) (*Server, error) {
	if opts.Password == nil {
		passwordConfig, err := config.NewPasswordConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
		opts.Password = passwordConfig
	}
	if opts.JWT == nil {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		opts.JWT = jwtConfig
	}
	if opts.RateLimit == nil {
		opts.RateLimit = ratelimit.LoadConfig()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	upcoming := views.UpcomingWindow
	if opts.UpcomingDays > 0 {
		upcoming = time.Duration(opts.UpcomingDays) * 24 * time.Hour
	}

	s := &Server{
		store:       store,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		jwtService:  NewJWTService(opts.JWT),
		validator:   validator.New(),
		metrics:     opts.Metrics,
		now:         opts.Now,
		upcoming:    upcoming,
	}
	s.userService = NewUserService(store, opts.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.handler = s.metrics.Middleware(s.withRateLimit(s.withLogging(s.withCORS(s.routes()))))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	protect("PUT /auth/password", s.authHandler.UpdatePassword)
	protect("GET /users/me", s.authHandler.Me)

	// Projects
	protect("GET /projects", s.handleListProjects)
	protect("POST /projects", s.handleCreateProject)
	protect("GET /projects/{id}", s.handleGetProject)
	protect("PUT /projects/{id}", s.handleUpdateProject)
	protect("PUT /projects/{id}/status", s.handleUpdateProjectStatus)
	protect("GET /projects/{id}/forecast", s.handleProjectForecast)

	// Workflow steps
	protect("GET /projects/{id}/steps", s.handleListSteps)
	protect("POST /projects/{id}/steps", s.handleCreateStep)
	protect("PUT /steps/{id}", s.handleUpdateStep)
	protect("PUT /steps/{id}/status", s.handleUpdateStepStatus)
	protect("PUT /steps/{id}/progress", s.handleUpdateStepProgress)
	protect("PUT /steps/{id}/position", s.handleMoveStep)
	protect("PUT /steps/{id}/ratings", s.handleRateStep)
	protect("DELETE /steps/{id}", s.handleDeleteStep)

	// Step files
	protect("GET /steps/{id}/files", s.handleListFiles)
	protect("POST /steps/{id}/files", s.handleCreateFile)
	protect("DELETE /files/{id}", s.handleDeleteFile)

	// Feedback
	protect("GET /projects/{id}/feedback", s.handleListFeedback)
	protect("POST /projects/{id}/feedback", s.handleCreateFeedback)
	protect("GET /feedback/{id}", s.handleGetFeedback)
	protect("PUT /feedback/{id}", s.handleUpdateFeedback)
	protect("GET /feedback/{id}/comments", s.handleListComments)
	protect("POST /feedback/{id}/comments", s.handleCreateComment)

	// Deadlines
	protect("GET /projects/{id}/deadlines", s.handleListDeadlines)
	protect("POST /projects/{id}/deadlines", s.handleCreateDeadline)
	protect("PUT /deadlines/{id}", s.handleUpdateDeadline)
	protect("GET /deadlines/upcoming", s.handleUpcomingDeadlines)

	// Team
	protect("GET /projects/{id}/collaborators", s.handleListCollaborators)
	protect("POST /projects/{id}/collaborators", s.handleAddCollaborator)
	protect("DELETE /collaborators/{id}", s.handleRemoveCollaborator)
	protect("GET /projects/{id}/editors", s.handleListEditors)
	protect("POST /projects/{id}/editors", s.handleAddEditor)
	protect("DELETE /editors/{id}", s.handleRemoveEditor)

	protect("GET /dashboard", s.handleDashboard)

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and the database pool.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.metrics.RateLimited.WithLabelValues(info.Rule).Inc()
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s completed in %v", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.Printf("[health] database ping failed: %v", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes err with the status HTTPStatus maps it to.
// Internal errors are logged and replaced by a generic message.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	writeError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		message = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

// clientID extracts the client IP from RemoteAddr. Forwarded headers are
// ignored since they are caller-controlled.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] %s limit exceeded: Limit=%d Reset=%s",
		info.Rule, info.Limit, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
