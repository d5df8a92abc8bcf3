package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/DarlingtonDeveloper/onboarding-agent/agent"
	"github.com/DarlingtonDeveloper/onboarding-agent/checklist"
)

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeBody decodes a JSON body into target. An empty body leaves target
// untouched and is not an error.
func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// --- Health ---

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (s *Server) handleEnvCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.keyStatus)
}

// --- Onboarding checklist ---

// handleTasks handles GET /api/onboarding/tasks. With ?id= it returns
// that single task.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	if r.URL.Query().Has("id") {
		task, ok := s.store.Get(r.URL.Query().Get("id"))
		if !ok {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, TaskResponse{Task: task})
		return
	}

	writeJSON(w, http.StatusOK, TasksResponse{Tasks: s.store.ListTasks()})
}

// handleToggle handles POST /api/onboarding/toggle
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req ToggleRequest
	if err := decodeBody(w, r, &req); err != nil {
		// An unreadable body names no task.
		s.logger.Debug("toggle body rejected", zap.Error(err))
		req = ToggleRequest{}
	}

	task, err := s.store.Toggle(req.ID, req.ExplicitDone())
	if err != nil {
		if errors.Is(err, checklist.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "toggle failed")
		return
	}

	if s.notifier != nil {
		s.notifier.BroadcastRaw(TopicChecklist, EventTaskToggled, task)
	}

	writeJSON(w, http.StatusOK, ToggleResponse{OK: true, Task: task})
}

// --- Agent chat ---

// handleRespond handles POST /api/agent/respond
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req RespondRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.logger.Debug("respond body rejected", zap.Error(err))
		req = RespondRequest{}
	}

	text, err := s.agent.Respond(r.Context(), req.ChatRequest())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, RespondResponse{Text: text})
	case errors.Is(err, agent.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "message is required")
	default:
		// Detail is logged by the router; the caller only sees a generic failure.
		respondError(w, http.StatusInternalServerError, "AI request failed")
	}
}

// handlePersonas handles GET /api/agent/personas
func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, PersonasResponse{
		Personas: agent.Personas(),
		Default:  agent.DefaultPersona,
	})
}

// handleUsage handles GET /api/agent/usage, optionally narrowed to one
// model with ?model=
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if model := r.URL.Query().Get("model"); model != "" {
		m, ok := s.usage.GetModel(model)
		if !ok {
			respondError(w, http.StatusNotFound, "no usage for model")
			return
		}
		writeJSON(w, http.StatusOK, m)
		return
	}
	writeJSON(w, http.StatusOK, s.usage.Summary())
}
