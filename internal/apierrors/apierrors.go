// Package apierrors contains the error types returned by services to report
// expected business-rule violations to API clients.
package apierrors

import (
	"encoding/json"
	"net/http"
)

// APIError represents an error that should be reported to the client with a
// specific HTTP status code and a human-readable detail message.
type APIError struct {
	detail     string
	statusCode int
}

// APIErrorOption determines the Functional Options used to create a new APIError.
type APIErrorOption func(err *APIError)

// WithDetail sets the human-readable detail message.
func WithDetail(detail string) APIErrorOption {
	return func(err *APIError) {
		err.detail = detail
	}
}

// WithHTTPStatusCode sets the HTTP status code reported to the client.
func WithHTTPStatusCode(statusCode int) APIErrorOption {
	return func(err *APIError) {
		err.statusCode = statusCode
	}
}

// NewAPIError creates a new APIError using the given options.
func NewAPIError(opts ...APIErrorOption) *APIError {
	apiError := &APIError{statusCode: http.StatusInternalServerError}
	for _, opt := range opts {
		opt(apiError)
	}
	return apiError
}

func (e APIError) Error() string {
	return e.detail
}

// Detail returns the human-readable detail message.
func (e APIError) Detail() string {
	return e.detail
}

// HTTPStatusCode returns the HTTP status code associated to the error.
func (e APIError) HTTPStatusCode() int {
	return e.statusCode
}

// MarshalJSON marshals the error detail, keeping the internal fields hidden.
func (e APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Detail string `json:"detail"`
	}{Detail: e.detail})
}

// ValidationError represents an invalid field in a client request.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (v ValidationError) Error() string {
	return v.Field + " " + v.Reason
}
