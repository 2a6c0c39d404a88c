package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidParams is the sentinel an action returns (possibly wrapped)
// when it cannot bind its required parameters from the request input.
// The dispatcher translates it into a 400 response via
// Controller.InvalidActionParams.
var ErrInvalidParams = errors.New("steer: invalid action parameters")

// HTTPError represents an HTTP-style dispatch failure with all data needed
// for the transport layer to render a response. It implements the error
// interface and unwinds through the filter chain untouched.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Detail is an optional extended description.
	Detail string

	// ActionID is the action identifier the failure relates to, if any.
	ActionID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// StatusPhrase returns the standard reason phrase for the error's code.
func (e *HTTPError) StatusPhrase() string {
	return StatusPhrase(e.Code)
}

// StatusPhrase returns the standard reason phrase for an HTTP status code,
// or "Unknown error" for codes outside the registered set.
func StatusPhrase(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown error"
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
// An empty message defaults to the standard reason phrase for the code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = StatusPhrase(code)
	}
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithActionID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ActionID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for the failure classes raised by this layer.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// ConfigError signals a programming or deployment defect in the declarative
// action/filter configuration: a resolved action without run capability, a
// provider entry missing its type key, an unregistered filter name, and the
// like. It is never rendered as a user-facing HTTP error.
type ConfigError struct {
	// Component names the misconfigured part ("action", "filter", "provider").
	Component string

	// Reason describes the defect.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("steer: invalid %s configuration: %s", e.Component, e.Reason)
}

// NewConfigError creates a ConfigError for the named component.
func NewConfigError(component, format string, args ...any) *ConfigError {
	return &ConfigError{
		Component: component,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// IsConfigError reports whether err is a configuration defect.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
