package apperrors

import "fmt"

// ValidationError marks malformed or incomplete input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthorizationError marks an actor acting outside their company or role.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func Authorization(format string, args ...any) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError marks an operation that is not valid for the entity's
// current lifecycle state, including lost check-and-set races. Safe to retry
// after re-reading state.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

func StateConflict(format string, args ...any) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

// EligibilityError marks a permanently disqualified bidder. Never retryable.
type EligibilityError struct {
	Msg string
}

func (e *EligibilityError) Error() string { return e.Msg }

func Eligibility(format string, args ...any) error {
	return &EligibilityError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks an unknown id, or an id not scoped to the actor.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// ExternalServiceError marks a failure of an optional external provider.
// Callers recover locally (deterministic fallback) instead of surfacing it.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func ExternalService(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}
