// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error variables for common backend failures. APIError values match them
// through errors.Is.
var (
	// ErrUnauthorized indicates a missing or rejected session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the session lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the addressed resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRejected indicates the backend answered success=false.
	ErrRejected = errors.New("request rejected")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")

	// ErrMissingID indicates the backend did not return a required identifier.
	ErrMissingID = errors.New("response missing identifier")
)

// APIError describes a failed backend call.
type APIError struct {
	Method    string
	Path      string
	Status    int
	Message   string
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == http.StatusOK {
		return fmt.Sprintf("%s %s rejected: %s", e.Method, e.Path, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s failed (HTTP %d): %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s failed (HTTP %d)", e.Method, e.Path, e.Status)
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrRejected:
		return e.Status >= 200 && e.Status < 300
	case ErrServer:
		return e.Status >= 500
	}
	return false
}

// Message extracts the backend's human-readable message from err, falling
// back to err.Error().
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
