package gateway

import (
	"errors"
	"fmt"
)

// ErrAuthExpired is returned for a 401 on any authenticated call.
// Callers redirect to the login page and never retry.
var ErrAuthExpired = errors.New("session expired, please log in again")

// ErrNotConfirmed is returned when the user declined a removal.
// Nothing was sent to the backend.
var ErrNotConfirmed = errors.New("removal not confirmed")

// LoadError means the domain list could not be fetched.
// The store keeps its previous contents.
type LoadError struct {
	Code int // HTTP status, 0 if the request never got a response
	Err  error
}

func (e *LoadError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("could not load domain data: backend returned %d", e.Code)
	}
	return fmt.Sprintf("could not load domain data: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError is an add rejected locally (empty input) or by the backend.
// Message is shown to the user verbatim.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// OperationError is a remove or bulk upload the backend rejected.
type OperationError struct {
	Op      string
	Code    int
	Message string
}

func (e *OperationError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// NetworkError is a request that failed before any response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: could not reach the monitoring backend, please retry: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Notice turns any gateway error into the short text shown to a user.
func Notice(err error) string {
	var (
		verr *ValidationError
		oerr *OperationError
		nerr *NetworkError
		lerr *LoadError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthExpired):
		return ErrAuthExpired.Error()
	case errors.Is(err, ErrNotConfirmed):
		return "Removal cancelled."
	case errors.As(err, &verr):
		return "Error: " + verr.Message
	case errors.As(err, &oerr):
		return "Error: " + oerr.Message
	case errors.As(err, &nerr):
		return "Could not reach the monitoring backend, please retry."
	case errors.As(err, &lerr):
		return "Could not load domain data."
	default:
		return "An unexpected error occurred."
	}
}
