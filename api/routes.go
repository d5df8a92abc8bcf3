// Package api exposes the checklist and the agent router over HTTP.
package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/DarlingtonDeveloper/onboarding-agent/agent"
	"github.com/DarlingtonDeveloper/onboarding-agent/checklist"
	"github.com/DarlingtonDeveloper/onboarding-agent/config"
	"github.com/DarlingtonDeveloper/onboarding-agent/usage"
)

// Event emitted on the checklist topic after every successful toggle
const (
	TopicChecklist   = "checklist"
	EventTaskToggled = "task_toggled"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Responder answers chat requests, normally an *agent.Router
type Responder interface {
	Respond(ctx context.Context, req agent.ChatRequest) (string, error)
}

// UsageReporter exposes accumulated token usage
type UsageReporter interface {
	Summary() usage.Summary
	GetModel(model string) (*usage.ModelTokens, bool)
}

// EventNotifier interface for WebSocket notifications
type EventNotifier interface {
	BroadcastRaw(topic, eventType string, data interface{})
}

// Options holds the server's dependencies. Store and Agent are required.
type Options struct {
	Store          *checklist.Store
	Agent          Responder
	Usage          UsageReporter
	Notifier       EventNotifier
	WebSocket      http.Handler
	KeyStatus      config.KeyStatus
	AllowedOrigins []string
	Logger         *zap.Logger
}

// Server holds dependencies for API handlers
type Server struct {
	store     *checklist.Store
	agent     Responder
	usage     UsageReporter
	notifier  EventNotifier
	ws        http.Handler
	keyStatus config.KeyStatus
	origins   []string
	logger    *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:     opts.Store,
		agent:     opts.Agent,
		usage:     opts.Usage,
		notifier:  opts.Notifier,
		ws:        opts.WebSocket,
		keyStatus: opts.KeyStatus,
		origins:   opts.AllowedOrigins,
		logger:    logger,
	}
}

// Routes returns the HTTP handler with all routes. The websocket endpoint
// is mounted outside the middleware chain because the upgrade needs the
// raw http.Hijacker.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/env-check", s.handleEnvCheck)

	// Onboarding checklist
	mux.HandleFunc("/api/onboarding/tasks", s.handleTasks)
	mux.HandleFunc("/api/onboarding/toggle", s.handleToggle)

	// Agent chat
	mux.HandleFunc("/api/agent/respond", s.handleRespond)
	mux.HandleFunc("/api/agent/personas", s.handlePersonas)
	if s.usage != nil {
		mux.HandleFunc("/api/agent/usage", s.handleUsage)
	}

	handler := Chain(mux,
		RecoverMiddleware(s.logger),
		RequestIDMiddleware,
		LoggingMiddleware(s.logger),
		CORSMiddleware(s.origins),
	)

	if s.ws == nil {
		return handler
	}
	outer := http.NewServeMux()
	outer.Handle("/ws", s.ws)
	outer.Handle("/", handler)
	return outer
}
