package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/mailclerk/internal/instrumentation"
	"github.com/teemow/mailclerk/internal/logging"
)

const (
	// DefaultAddr is the default address for the chat server.
	DefaultAddr = ":8080"

	// DefaultReadHeaderTimeout is the default read-header timeout.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default write timeout. Chat requests wait
	// on model and tool calls, so this is generous.
	DefaultWriteTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the default idle timeout.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Chatter handles one chat exchange. The assistant implements it; tests
// substitute a fake.
type Chatter interface {
	Chat(ctx context.Context, conversationID, message string) (string, error)
}

// Config holds configuration for the chat server.
type Config struct {
	// Addr is the address to bind to (e.g. ":8080").
	Addr string

	// Chat handles chat exchanges. Required.
	Chat Chatter

	// Metrics records HTTP request metrics. Optional.
	Metrics *instrumentation.Metrics

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	// Logger receives request logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Server serves the chat endpoint plus health and metrics endpoints.
type Server struct {
	httpServer     *http.Server
	addr           string
	chat           Chatter
	health         *HealthChecker
	metrics        *instrumentation.Metrics
	metricsHandler http.Handler
	logger         *slog.Logger
}

// New creates a chat server from the given configuration.
func New(config Config) (*Server, error) {
	if config.Chat == nil {
		return nil, errors.New("chat handler is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.Metrics == nil {
		config.Metrics = &instrumentation.Metrics{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Server{
		addr:           config.Addr,
		chat:           config.Chat,
		health:         NewHealthChecker(),
		metrics:        config.Metrics,
		metricsHandler: config.MetricsHandler,
		logger:         logging.WithService(config.Logger, "server"),
	}, nil
}

// Handler builds the full request mux including middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /chat", http.HandlerFunc(s.handleChat))
	s.health.RegisterHealthEndpoints(mux)
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
	return s.withRecovery(s.withMetrics(mux))
}

// Start runs the server until it fails or is shut down. Call in a goroutine
// for non-blocking operation.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("starting chat server", slog.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains the server gracefully. Readiness flips first so probes
// stop routing traffic during the drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	if s.httpServer != nil {
		s.logger.Info("shutting down chat server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

type chatRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be valid JSON"})
		return
	}

	var missing []string
	if strings.TrimSpace(req.ChatID) == "" {
		missing = append(missing, "chatId")
	}
	if strings.TrimSpace(req.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	logger := logging.WithConversation(s.logger, req.ChatID)
	reply, err := s.chat.Chat(r.Context(), req.ChatID, req.Message)
	if err != nil {
		logger.Error("chat request failed",
			logging.Operation("server.chat"),
			logging.Err(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// withRecovery maps panics in handlers to a generic 500 JSON body.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in request handler",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
				)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withMetrics records a counter and duration per request.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
