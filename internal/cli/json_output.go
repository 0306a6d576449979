// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output support for scripting.
//
// Every command accepts --json. Data goes to stdout in the envelope below;
// human-readable notices go to stderr.
package cli

import (
	"io"
	"time"

	"github.com/jeranaias/assistchat/internal/model"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// ErrorType classifies the error for scripts
	ErrorType string `json:"error_type,omitempty"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to w.
func (r *JSONResponse) Print(w io.Writer) error {
	return writeJSON(w, r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// SessionData describes the auth state after login, logout or status.
type SessionData struct {
	LoggedIn bool   `json:"logged_in"`
	Account  string `json:"account,omitempty"`
	Role     string `json:"role,omitempty"`
}

// MessageData wraps a backend status message.
type MessageData struct {
	Message string `json:"message"`
}

// ConversationSummary is one row of "conversations list".
type ConversationSummary struct {
	ID            string `json:"id"`
	AssistantID   int64  `json:"assistant_id"`
	AssistantName string `json:"assistant_name"`
	Title         string `json:"title"`
	Messages      int    `json:"messages"`
	Current       bool   `json:"current"`
}

// ConversationData carries a conversation with its messages.
type ConversationData struct {
	ID          string             `json:"id"`
	AssistantID int64              `json:"assistant_id"`
	Messages    []model.ChatRecord `json:"messages"`
}

// SendData is the result of "send".
type SendData struct {
	ConversationID string           `json:"conversation_id"`
	Reply          model.ChatRecord `json:"reply"`
}

// StatusData represents the data returned by the status command.
type StatusData struct {
	Backend StatusBackendInfo `json:"backend"`
	Session SessionData       `json:"session"`
	Storage StatusStorageInfo `json:"storage"`
}

// StatusBackendInfo describes backend reachability.
type StatusBackendInfo struct {
	URL        string `json:"url"`
	Reachable  bool   `json:"reachable"`
	LatencyMs  int64  `json:"latency_ms"`
	Assistants int    `json:"assistants,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StatusStorageInfo describes local persistence.
type StatusStorageInfo struct {
	Backend       string `json:"backend"`
	DataDir       string `json:"data_dir,omitempty"`
	Assistants    int    `json:"assistants"`
	Conversations int    `json:"conversations"`
	Current       string `json:"current_conversation,omitempty"`
}

// ConfigData represents the data returned by the config command.
type ConfigData struct {
	Path   string `json:"config_path"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
	Config any    `json:"config,omitempty"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
