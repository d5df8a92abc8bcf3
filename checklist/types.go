package checklist

import "errors"

// ErrTaskNotFound is returned when a toggle references an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// Task represents a single onboarding checklist item
type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// DefaultTasks returns the onboarding checklist every new process starts with
func DefaultTasks() []Task {
	return []Task{
		{ID: "acct", Title: "Set up company email & SSO"},
		{ID: "laptop", Title: "Laptop + VPN + MFA"},
		{ID: "dev", Title: "Dev environment (Node, Git, repo access)"},
		{ID: "policy", Title: "Read Code of Conduct & Security Policy"},
		{ID: "timesheet", Title: "Timesheet access & submission test"},
	}
}
