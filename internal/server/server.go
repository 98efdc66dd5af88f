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
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/family-activities/internal/config"
	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/outreach"
	"github.com/jonathan/family-activities/internal/parsing"
	"github.com/jonathan/family-activities/internal/server/middleware"
	"github.com/jonathan/family-activities/internal/server/ratelimit"
	"github.com/jonathan/family-activities/internal/types"
)

// Store is the persistence the API reads from
type Store interface {
	Ping(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	SampleRows(ctx context.Context, table string, n int) ([]map[string]any, error)
	SearchEvents(ctx context.Context, term string, limit int) ([]db.Event, error)
	ListActivities(ctx context.Context) ([]types.ActivityMetadata, error)
	GetActivitiesByRefs(ctx context.Context, refs []types.ActivityRef) (map[string]types.ActivityMetadata, error)
}

// Parser turns a free-text description into a FamilyProfile
type Parser interface {
	Parse(ctx context.Context, req *types.FamilyParsingRequest) (*parsing.Result, error)
}

// Recommender ranks the catalog for a request
type Recommender interface {
	Recommend(ctx context.Context, req *types.RecommendationRequest) (*types.LightweightRecommendationResult, error)
}

// Emailer writes outreach emails for recommendations
type Emailer interface {
	Generate(ctx context.Context, req *types.EmailGenerationRequest) (*outreach.Result, error)
}

// Services are the collaborators behind the routes. A nil service makes its
// routes answer 503.
type Services struct {
	Store       Store
	Parser      Parser
	Recommender Recommender
	Emailer     Emailer
}

// Config holds server configuration
type Config struct {
	Port      int
	Env       *config.EnvConfig
	Gate      *config.GateConfig
	Session   *config.SessionConfig
	RateLimit *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	services    Services
	env         *config.EnvConfig
	gate        *config.GateConfig
	sessions    *SessionService
	rateLimiter *ratelimit.Limiter
	closers     []func()
}

type requestIDKey struct{}

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// New creates a server around the given services
func New(cfg Config, services Services) (*Server, error) {
	if cfg.Env == nil || cfg.Gate == nil {
		return nil, fmt.Errorf("server config requires Env and Gate")
	}

	s := &Server{
		services:    services,
		env:         cfg.Env,
		gate:        cfg.Gate,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}

	var validator middleware.TokenValidator
	if cfg.Session != nil && cfg.Session.Signed() {
		s.sessions = NewSessionService(cfg.Session)
		validator = s.sessions.AsTokenValidator()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("GET /api/debug/events/{preset}", s.handleDebugEvents)
	mux.HandleFunc("POST /api/parse-family", s.handleParseFamily)
	mux.HandleFunc("POST /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/activities", s.handleActivities)
	mux.HandleFunc("POST /api/emails", s.handleEmails)

	gated := middleware.Gate(validator, isPublicPath)(mux)
	s.handler = s.withLogging(s.withRateLimit(s.withCORS(gated)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // model calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware chain, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// OnShutdown registers cleanup to run after the server stops
func (s *Server) OnShutdown(fn func()) {
	s.closers = append(s.closers, fn)
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.cleanup()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.cleanup()
	log.Println("Server stopped")
	return nil
}

func (s *Server) cleanup() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func isPublicPath(path string) bool {
	switch path {
	case "/api/health", "/api/auth/login", "/api/auth/logout":
		return true
	default:
		return false
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.env.SiteURL
		if origin == "" {
			origin = "*"
		} else {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging assigns a request ID and logs each request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log.Printf("[%s] %s %s (%s)", r.Method, r.URL.Path, r.RemoteAddr, requestID)
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d completed in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller by remote IP
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	details := map[string]any{
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		details["resetAt"] = info.ResetTime.UTC().Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		details["retryAfter"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] %s %s from %s: limit=%d", r.Method, r.URL.Path, clientID(r), info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, types.NewError("Rate limit exceeded. Please try again later.", details, requestID(r)))
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// success writes a success envelope
func (s *Server) success(w http.ResponseWriter, resp types.SuccessResponse) {
	s.jsonResponse(w, http.StatusOK, resp)
}

// errorResponse writes an error envelope with the status HTTPStatus picks for err
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	message, details := errorBody(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[api] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.jsonResponse(w, status, types.NewError(message, details, requestID(r)))
}
