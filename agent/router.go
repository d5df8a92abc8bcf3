// Package agent routes chat requests to a persona and an LLM gateway.
package agent

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxOutputTokens caps the completion length when no option is given
const DefaultMaxOutputTokens = 600

// NoOutputText is returned when the gateway succeeds with an empty answer
const NoOutputText = "No output"

// Event topic and type emitted after every completion attempt
const (
	TopicAgent          = "agent"
	EventAgentResponded = "agent_responded"
)

// Gateway performs one completion call against an LLM backend
type Gateway interface {
	Complete(ctx context.Context, systemInstructions, userPrompt string, maxTokens int) (string, error)
}

// EventNotifier receives router events, typically a websocket hub
type EventNotifier interface {
	BroadcastRaw(topic, eventType string, data interface{})
}

// RespondedEvent is the payload of EventAgentResponded
type RespondedEvent struct {
	Persona    Persona `json:"persona"`
	PromptID   string  `json:"prompt_id"`
	OK         bool    `json:"ok"`
	DurationMs int64   `json:"duration_ms"`
}

// Router turns chat requests into gateway calls
type Router struct {
	gateway   Gateway
	maxTokens int
	logger    *zap.Logger
	notifier  EventNotifier
}

// Option configures a Router
type Option func(*Router)

// WithMaxTokens sets the output-length cap passed to the gateway
func WithMaxTokens(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// WithLogger sets the logger used for upstream failures
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNotifier sets the event sink
func WithNotifier(n EventNotifier) Option {
	return func(r *Router) { r.notifier = n }
}

// NewRouter creates a router that delegates to gw
func NewRouter(gw Gateway, opts ...Option) *Router {
	r := &Router{
		gateway:   gw,
		maxTokens: DefaultMaxOutputTokens,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxTokens returns the configured output-length cap
func (r *Router) MaxTokens() int {
	return r.maxTokens
}

// Respond validates req, composes the prompt and performs a single gateway
// call. It returns ErrInvalidRequest for a blank message and an
// *UpstreamError for any gateway failure. It never retries.
func (r *Router) Respond(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", ErrInvalidRequest
	}

	prompt := ComposePrompt(req)
	promptID := prompt.Fingerprint()
	start := time.Now()

	text, err := r.gateway.Complete(ctx, prompt.Instructions, prompt.Input, r.maxTokens)
	elapsed := time.Since(start)
	r.notify(prompt.Persona, promptID, err == nil, elapsed)

	if err != nil {
		r.logger.Error("completion failed",
			zap.String("persona", string(prompt.Persona)),
			zap.String("prompt_id", promptID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", &UpstreamError{Persona: prompt.Persona, Err: err}
	}

	r.logger.Debug("completion succeeded",
		zap.String("persona", string(prompt.Persona)),
		zap.String("prompt_id", promptID),
		zap.Duration("elapsed", elapsed),
		zap.Int("output_len", len(text)))

	if text == "" {
		return NoOutputText, nil
	}
	return text, nil
}

func (r *Router) notify(p Persona, promptID string, ok bool, elapsed time.Duration) {
	if r.notifier == nil {
		return
	}
	r.notifier.BroadcastRaw(TopicAgent, EventAgentResponded, RespondedEvent{
		Persona:    p,
		PromptID:   promptID,
		OK:         ok,
		DurationMs: elapsed.Milliseconds(),
	})
}
