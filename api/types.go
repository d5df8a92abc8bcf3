package api

import (
	"encoding/json"
	"strings"

	"github.com/DarlingtonDeveloper/onboarding-agent/agent"
	"github.com/DarlingtonDeveloper/onboarding-agent/checklist"
)

// --- Request types ---

// ToggleRequest is the request for POST /api/onboarding/toggle.
// Done is kept raw so that a non-boolean value means "flip" instead of a
// decode failure.
type ToggleRequest struct {
	ID   string          `json:"id"`
	Done json.RawMessage `json:"done,omitempty"`
}

// ExplicitDone returns the requested done value, or nil when done is
// absent or not a JSON boolean
func (r ToggleRequest) ExplicitDone() *bool {
	var v bool
	switch strings.TrimSpace(string(r.Done)) {
	case "true":
		v = true
	case "false":
		v = false
	default:
		return nil
	}
	return &v
}

// RespondRequest is the request for POST /api/agent/respond. Fields are
// kept raw so that a wrongly typed agent, role or level falls back to its
// default instead of failing the whole body.
type RespondRequest struct {
	Agent   json.RawMessage `json:"agent,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Role    json.RawMessage `json:"role,omitempty"`
	Level   json.RawMessage `json:"level,omitempty"`
}

// ChatRequest converts r for the agent router. Any field that is not a JSON
// string becomes empty.
func (r RespondRequest) ChatRequest() agent.ChatRequest {
	return agent.ChatRequest{
		Agent:   rawString(r.Agent),
		Message: rawString(r.Message),
		Role:    rawString(r.Role),
		Level:   rawString(r.Level),
	}
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// --- Response types ---

// ErrorResponse is a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse is the response for GET /
type OKResponse struct {
	OK bool `json:"ok"`
}

// TasksResponse is the response for GET /api/onboarding/tasks
type TasksResponse struct {
	Tasks []checklist.Task `json:"tasks"`
}

// TaskResponse is the response for GET /api/onboarding/tasks?id=
type TaskResponse struct {
	Task checklist.Task `json:"task"`
}

// ToggleResponse is the response for POST /api/onboarding/toggle
type ToggleResponse struct {
	OK   bool           `json:"ok"`
	Task checklist.Task `json:"task"`
}

// RespondResponse is the response for POST /api/agent/respond
type RespondResponse struct {
	Text string `json:"text"`
}

// PersonasResponse is the response for GET /api/agent/personas
type PersonasResponse struct {
	Personas []agent.PersonaInfo `json:"personas"`
	Default  agent.Persona       `json:"default"`
}
