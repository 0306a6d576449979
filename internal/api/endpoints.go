// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeranaias/assistchat/internal/model"
)

// =============================================================================
// AUTH
// =============================================================================

// Login authenticates and returns the session token and role.
func (c *Client) Login(ctx context.Context, account, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.Do(ctx, Login(LoginData{Account: account, Password: password}), &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: %w", ErrMissingID)
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, data RegisterData) (string, error) {
	return c.message(ctx, Register(data))
}

// ForgotPassword asks the backend to send a reset code to account.
func (c *Client) ForgotPassword(ctx context.Context, account string) (string, error) {
	return c.message(ctx, ForgotPassword(account))
}

// ResetPassword sets a new password using a reset code.
func (c *Client) ResetPassword(ctx context.Context, data ResetPasswordData) (string, error) {
	return c.message(ctx, ResetPassword(data))
}

// =============================================================================
// ASSISTANTS & CHAT
// =============================================================================

// ListAssistants returns every assistant visible to the session.
func (c *Client) ListAssistants(ctx context.Context) ([]model.Assistant, error) {
	var list dataList[model.Assistant]
	if err := c.Do(ctx, ListAssistants(), &list); err != nil {
		return nil, err
	}
	return []model.Assistant(list), nil
}

// GetAssistant returns one assistant. The backend answers a missing id with
// HTTP 200 and a "detail" body, which is reported as ErrNotFound.
func (c *Client) GetAssistant(ctx context.Context, assistantID int64) (*model.Assistant, error) {
	var a model.Assistant
	req := GetAssistant(assistantID)
	if err := c.Do(ctx, req, &a); err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, fmt.Errorf("%s %s: assistant %d: %w", req.Method, req.Path, assistantID, ErrNotFound)
	}
	return &a, nil
}

// CreateConversation asks the backend for a new conversation id.
func (c *Client) CreateConversation(ctx context.Context, assistantID int64) (*CreateConversationResponse, error) {
	var resp CreateConversationResponse
	req := CreateConversation(assistantID)
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.ConversationID == "" {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrMissingID)
	}
	return &resp, nil
}

// DeleteConversation removes a conversation on the backend.
func (c *Client) DeleteConversation(ctx context.Context, assistantID int64, conversationID string) error {
	return c.Do(ctx, DeleteConversation(assistantID, conversationID), nil)
}

// History returns the stored messages of a conversation.
func (c *Client) History(ctx context.Context, assistantID int64, conversationID string) ([]model.ChatRecord, error) {
	var list dataList[model.ChatRecord]
	if err := c.Do(ctx, History(assistantID, conversationID), &list); err != nil {
		return nil, err
	}
	return []model.ChatRecord(list), nil
}

// SendMessage posts a user message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, assistantID int64, conversationID, text string) (*SendMessageResponse, error) {
	var resp SendMessageResponse
	data := SendMessageData{Message: text, ConversationID: conversationID}
	if err := c.Do(ctx, SendMessage(assistantID, data), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadAttachment uploads a file into a conversation.
func (c *Client) UploadAttachment(ctx context.Context, assistantID int64, conversationID, filename string, file io.Reader) (*UploadAttachmentResponse, error) {
	var resp UploadAttachmentResponse
	if err := c.Do(ctx, UploadAttachment(assistantID, conversationID, filename, file), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// AdminListAssistants returns every assistant with admin-only fields.
func (c *Client) AdminListAssistants(ctx context.Context) ([]model.Assistant, error) {
	var list dataList[model.Assistant]
	if err := c.Do(ctx, AdminListAssistants(), &list); err != nil {
		return nil, err
	}
	return []model.Assistant(list), nil
}

// AdminCreateAssistant creates an assistant.
func (c *Client) AdminCreateAssistant(ctx context.Context, in AssistantInput) (string, error) {
	return c.message(ctx, AdminCreateAssistant(in))
}

// AdminUpdateAssistant applies a partial update.
func (c *Client) AdminUpdateAssistant(ctx context.Context, assistantID int64, patch AssistantPatch) (string, error) {
	return c.message(ctx, AdminUpdateAssistant(assistantID, patch))
}

// AdminDeleteAssistant deletes an assistant.
func (c *Client) AdminDeleteAssistant(ctx context.Context, assistantID int64) (string, error) {
	return c.message(ctx, AdminDeleteAssistant(assistantID))
}

// AdminUpdatePrompt replaces an assistant's prompt.
func (c *Client) AdminUpdatePrompt(ctx context.Context, assistantID int64, prompt string) (string, error) {
	return c.message(ctx, AdminUpdatePrompt(assistantID, prompt))
}

// AdminUpdateParameters replaces an assistant's model parameters.
func (c *Client) AdminUpdateParameters(ctx context.Context, assistantID int64, params map[string]any) (string, error) {
	return c.message(ctx, AdminUpdateParameters(assistantID, params))
}

// AdminBindKnowledge replaces the documents bound to an assistant.
func (c *Client) AdminBindKnowledge(ctx context.Context, assistantID int64, documentIDs []int64) (string, error) {
	return c.message(ctx, AdminBindKnowledge(assistantID, documentIDs))
}

// AdminListDocuments returns every knowledge document.
func (c *Client) AdminListDocuments(ctx context.Context) ([]model.Document, error) {
	var list dataList[model.Document]
	if err := c.Do(ctx, AdminListDocuments(), &list); err != nil {
		return nil, err
	}
	return []model.Document(list), nil
}

// AdminUploadDocument uploads a knowledge document.
func (c *Client) AdminUploadDocument(ctx context.Context, filename string, file io.Reader) (*DocumentResponse, error) {
	var resp DocumentResponse
	if err := c.Do(ctx, AdminUploadDocument(filename, file), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminParseDocument queues a document for parsing.
func (c *Client) AdminParseDocument(ctx context.Context, documentID int64) (string, error) {
	return c.message(ctx, AdminParseDocument(documentID))
}

// AdminUpdateDocument applies a partial document update.
func (c *Client) AdminUpdateDocument(ctx context.Context, documentID int64, patch DocumentPatch) (string, error) {
	return c.message(ctx, AdminUpdateDocument(documentID, patch))
}

// AdminDeleteDocument deletes a document.
func (c *Client) AdminDeleteDocument(ctx context.Context, documentID int64) (string, error) {
	return c.message(ctx, AdminDeleteDocument(documentID))
}

// AdminListUsers returns every user account.
func (c *Client) AdminListUsers(ctx context.Context) ([]model.User, error) {
	var list dataList[model.User]
	if err := c.Do(ctx, AdminListUsers(), &list); err != nil {
		return nil, err
	}
	return []model.User(list), nil
}

// AdminCreateUser creates a user account.
func (c *Client) AdminCreateUser(ctx context.Context, in UserInput) (string, error) {
	return c.message(ctx, AdminCreateUser(in))
}

// AdminUpdateUser applies a partial user update.
func (c *Client) AdminUpdateUser(ctx context.Context, userID int64, patch UserPatch) (string, error) {
	return c.message(ctx, AdminUpdateUser(userID, patch))
}

// AdminDeleteUser deletes a user account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID int64) (string, error) {
	return c.message(ctx, AdminDeleteUser(userID))
}

// AdminResetUserPassword resets a user's password.
func (c *Client) AdminResetUserPassword(ctx context.Context, userID int64, newPassword string) (string, error) {
	return c.message(ctx, AdminResetUserPassword(userID, newPassword))
}

// message executes req and returns the backend's status message. Bodies
// that are not a message object yield an empty message.
func (c *Client) message(ctx context.Context, req Request) (string, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, req, &raw); err != nil {
		return "", err
	}
	var resp MessageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", nil
	}
	return resp.Message, nil
}
