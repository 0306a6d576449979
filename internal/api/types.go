// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jeranaias/assistchat/internal/model"
)

// =============================================================================
// REQUEST PAYLOADS
// =============================================================================

// LoginData is the body of POST /login. Account is a username, email or phone.
type LoginData struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// RegisterData is the body of POST /register.
type RegisterData struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ForgotPasswordData is the body of POST /forgot-password.
type ForgotPasswordData struct {
	Account string `json:"account"`
}

// ResetPasswordData is the body of POST /reset-password.
type ResetPasswordData struct {
	Account     string `json:"account"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// SendMessageData is the body of POST /chat/{assistantId}.
type SendMessageData struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AssistantInput is the body for creating an assistant.
type AssistantInput struct {
	Name            string         `json:"name"`
	Icon            string         `json:"icon,omitempty"`
	Description     string         `json:"description,omitempty"`
	PromptContent   string         `json:"prompt_content,omitempty"`
	ModelParameters map[string]any `json:"model_parameters,omitempty"`
	KnowledgeIDs    []int64        `json:"knowledge_ids,omitempty"`
}

// AssistantPatch is the body for a partial assistant update. Nil fields are
// left unchanged by the backend.
type AssistantPatch struct {
	Name            *string        `json:"name,omitempty"`
	Icon            *string        `json:"icon,omitempty"`
	Description     *string        `json:"description,omitempty"`
	PromptContent   *string        `json:"prompt_content,omitempty"`
	ModelParameters map[string]any `json:"model_parameters,omitempty"`
	KnowledgeIDs    []int64        `json:"knowledge_ids,omitempty"`
}

// DocumentPatch is the body for a partial document update.
type DocumentPatch struct {
	Name        *string        `json:"name,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	AssistantID *int64         `json:"assistant_id,omitempty"`
}

// UserInput is the body for creating a user from the admin area.
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UserPatch is the body for a partial user update.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// =============================================================================
// RESPONSE PAYLOADS
// =============================================================================

// Envelope is the common {success, message} wrapper most endpoints return.
type Envelope struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  any    `json:"detail,omitempty"`
}

// MessageResponse carries only the backend's status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse is the result of a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    string `json:"role"`
}

// CreateConversationResponse is the result of POST /conversation/{assistantId}.
type CreateConversationResponse struct {
	ConversationID FlexString `json:"conversation_id"`
	OpeningMessage string     `json:"opening_message,omitempty"`
}

// SendMessageResponse is the result of the fallback send endpoint.
type SendMessageResponse struct {
	Reply          string     `json:"reply"`
	ConversationID FlexString `json:"conversation_id"`
}

// UploadAttachmentResponse is the result of an attachment upload.
type UploadAttachmentResponse struct {
	ConversationID FlexString       `json:"conversation_id"`
	Message        model.ChatRecord `json:"message"`
	OpeningMessage string           `json:"opening_message,omitempty"`
}

// DocumentResponse wraps a single document returned under "data".
type DocumentResponse struct {
	Message string         `json:"message"`
	Data    model.Document `json:"data"`
}

// =============================================================================
// DECODING HELPERS
// =============================================================================

// FlexString accepts a JSON string or number. Conversation ids are strings
// on the wire, but some backend builds emit them as numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the id as a plain string.
func (f FlexString) String() string {
	return string(f)
}

// dataList decodes either a bare JSON array or an envelope with the array
// under "data".
type dataList[T any] []T

func (l *dataList[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*l = env.Data
	return nil
}
