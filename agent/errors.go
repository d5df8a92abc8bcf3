package agent

import "errors"

var (
	// ErrInvalidRequest means the caller's input failed a precondition
	ErrInvalidRequest = errors.New("message is required")

	// ErrUpstreamFailure matches any failed completion call
	ErrUpstreamFailure = errors.New("AI request failed")
)

// UpstreamError wraps the gateway error that caused a failed Respond.
// Its message is generic; the cause is only reachable through Unwrap.
type UpstreamError struct {
	Persona Persona
	Err     error
}

func (e *UpstreamError) Error() string {
	return ErrUpstreamFailure.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports UpstreamError as ErrUpstreamFailure
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFailure
}
