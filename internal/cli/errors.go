// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all CLI commands.
//
// STANDARDIZED PATTERN:
//   - Handlers always return errors and never print them
//   - Execute displays the error once and picks the exit code

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/chatstore"
	"github.com/jeranaias/assistchat/internal/config"
	"github.com/jeranaias/assistchat/internal/router"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports invalid arguments.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return fmt.Sprintf("%s\nUsage: %s", e.Message, e.Usage)
	}
	return e.Message
}

// AccessError reports a navigation the route guard redirected.
type AccessError struct {
	Path     string // requested location
	Redirect string // where the guard sent it
}

func (e *AccessError) Error() string {
	switch e.Redirect {
	case router.PathLogin:
		return fmt.Sprintf("%s requires login: run 'assistchat login'", e.Path)
	case router.PathAssistants:
		return fmt.Sprintf("%s requires the admin role", e.Path)
	default:
		return fmt.Sprintf("%s is not accessible (redirected to %s)", e.Path, e.Redirect)
	}
}

// NotFoundError reports a missing local resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// missingArg builds the usage error for a required argument.
func missingArg(name, usage string) error {
	return &UsageError{Message: name + " is required", Usage: usage}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var accessErr *AccessError
	var notFoundErr *NotFoundError
	var validateErrs config.ValidateErrors
	var netErr net.Error

	switch {
	case errors.As(err, &usageErr), errors.Is(err, router.ErrRouteNotFound):
		return ExitUsageError
	case errors.As(err, &validateErrs):
		return ExitConfigError
	case errors.As(err, &accessErr),
		errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, api.ErrForbidden):
		return ExitAuthError
	case errors.As(err, &notFoundErr),
		errors.Is(err, api.ErrNotFound),
		errors.Is(err, chatstore.ErrConversationNotFound):
		return ExitNotFoundError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return ExitTimeoutError
		}
		return ExitNetworkError
	}
	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON when jsonMode is set.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.ErrorType = errorType(err)
		resp.Print(w)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
	if errors.Is(err, api.ErrUnauthorized) {
		fmt.Fprintln(w, DimStyle.Render("Your session may have expired. Run 'assistchat login'."))
	}
}

func errorType(err error) string {
	switch GetExitCode(err) {
	case ExitUsageError:
		return "usage_error"
	case ExitConfigError:
		return "config_error"
	case ExitAuthError:
		return "auth_error"
	case ExitNotFoundError:
		return "not_found_error"
	case ExitNetworkError, ExitTimeoutError:
		return "network_error"
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return "api_error"
	}
	return "generic_error"
}

// writeJSON encodes v indented.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
