package agent

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Placeholders used when a request leaves role or level blank
const (
	DefaultRole  = "New Hire"
	DefaultLevel = "Beginner"
)

const answerGuidance = "Return a helpful, concrete answer with steps. Use bullet lists when useful."

// ChatRequest is a single chat turn addressed to a persona
type ChatRequest struct {
	Agent   string `json:"agent,omitempty"`
	Message string `json:"message"`
	Role    string `json:"role,omitempty"`
	Level   string `json:"level,omitempty"`
}

// Prompt is the composed input for one completion call
type Prompt struct {
	Persona      Persona
	Instructions string
	Input        string
}

// ComposePrompt resolves the persona and builds the user prompt.
// It is pure: identical requests always produce identical prompts.
func ComposePrompt(req ChatRequest) Prompt {
	persona := ResolvePersona(req.Agent)

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = DefaultRole
	}
	level := strings.TrimSpace(req.Level)
	if level == "" {
		level = DefaultLevel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Employee role: %s\n", role)
	fmt.Fprintf(&b, "Seniority: %s\n", level)
	fmt.Fprintf(&b, "Agent: %s\n", persona)
	fmt.Fprintf(&b, "User: %s\n\n", req.Message)
	b.WriteString(answerGuidance)

	return Prompt{
		Persona:      persona,
		Instructions: persona.Instructions(),
		Input:        b.String(),
	}
}

// Fingerprint is a stable 10-character hex id for the prompt content.
// Parts are length-prefixed so instructions and input cannot bleed together.
func (p Prompt) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{p.Instructions, p.Input} {
		fmt.Fprintf(h, "%d:%s", len(part), part)
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:5])
}
