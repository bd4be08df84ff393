// Package util provides logging, common error types and address helpers.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client error taxonomy. Callers branch on these
// with errors.Is; the concrete error types below carry the context.
var (
	ErrNotFound        = errors.New("element not found")
	ErrCommandFailed   = errors.New("engine command failed")
	ErrCreateFailed    = errors.New("create element failed")
	ErrUpdateFailed    = errors.New("update element failed")
	ErrDeleteFailed    = errors.New("delete element failed")
	ErrFetchFailed     = errors.New("fetch element failed")
	ErrAmbiguousConfig = errors.New("ambiguous configuration")
	ErrConnection      = errors.New("connection to management server failed")
	ErrNotLoggedIn     = errors.New("no session, login required")
)

// APIError represents a non-success response from the management server.
// The original status code and server message are preserved verbatim so the
// caller can distinguish a server-side validation reject from a local
// not-found. Status is 0 when the request never reached the server.
type APIError struct {
	Method  string
	Href    string
	Status  int
	Message string

	kind error // one of the sentinel errors above
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Href, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Href, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// NewCommandFailed wraps a failed engine command request. Used for POST
// operations against engine collection hrefs.
func NewCommandFailed(method, href string, status int, message string) *APIError {
	return &APIError{Method: method, Href: href, Status: status, Message: message, kind: ErrCommandFailed}
}

// NewCreateFailed wraps a failed element create request.
func NewCreateFailed(href string, status int, message string) *APIError {
	return &APIError{Method: "POST", Href: href, Status: status, Message: message, kind: ErrCreateFailed}
}

// NewUpdateFailed wraps a failed update (PUT) request. Distinct from create
// failures so callers can branch on which phase failed.
func NewUpdateFailed(href string, status int, message string) *APIError {
	return &APIError{Method: "PUT", Href: href, Status: status, Message: message, kind: ErrUpdateFailed}
}

// NewFetchFailed wraps a failed fetch (GET) request.
func NewFetchFailed(href string, status int, message string) *APIError {
	return &APIError{Method: "GET", Href: href, Status: status, Message: message, kind: ErrFetchFailed}
}

// NewConnectionError wraps a request that never completed or a failed
// authentication, both of which mean no usable session exists.
func NewConnectionError(method, href string, status int, message string) *APIError {
	return &APIError{Method: method, Href: href, Status: status, Message: message, kind: ErrConnection}
}

// NewDeleteFailed wraps a failed delete request.
func NewDeleteFailed(href string, status int, message string) *APIError {
	return &APIError{Method: "DELETE", Href: href, Status: status, Message: message, kind: ErrDeleteFailed}
}

// NotFoundError is returned when id resolution exhausts the candidate set
// without a match. Resolved locally, never a network failure.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s was not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error for the given resource and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AmbiguousConfigError is a caller-detectable precondition violation,
// raised before any network call is attempted.
type AmbiguousConfigError struct {
	Operation string
	Reason    string
}

func (e *AmbiguousConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

func (e *AmbiguousConfigError) Unwrap() error {
	return ErrAmbiguousConfig
}

// NewAmbiguousConfigError creates an ambiguous-configuration error.
func NewAmbiguousConfigError(operation, reason string) *AmbiguousConfigError {
	return &AmbiguousConfigError{Operation: operation, Reason: reason}
}
