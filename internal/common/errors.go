package common

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnauthorized = errors.New("not authenticated")
var ErrSessionExpired = errors.New("session expired")
var ErrUserNotFound = errors.New("user not found")

// FieldError is one invalid form field reported by the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the backend error payload for any non-2xx response.
type APIError struct {
	Timestamp time.Time    `json:"timestamp"`
	Status    int          `json:"status"`
	ErrorText string       `json:"error"`
	Message   string       `json:"message"`
	Path      string       `json:"path"`
	Errors    []FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}

	return fmt.Sprintf("api: %d %s", e.Status, e.ErrorText)
}

// FieldErrors maps field name to message for form input binding.
func (e *APIError) FieldErrors() map[string]string {
	if len(e.Errors) == 0 {
		return nil
	}

	res := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		res[fe.Field] = fe.Message
	}

	return res
}
