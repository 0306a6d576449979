// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Request describes one backend call. Body is JSON-encoded; Multipart, when
// set, takes precedence and is sent as multipart/form-data.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Multipart *Multipart
}

// Multipart is a form with plain fields and one file part.
type Multipart struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

// =============================================================================
// AUTH
// =============================================================================

// Login builds POST /login.
func Login(data LoginData) Request {
	return Request{Method: http.MethodPost, Path: "/login", Body: data}
}

// Register builds POST /register.
func Register(data RegisterData) Request {
	return Request{Method: http.MethodPost, Path: "/register", Body: data}
}

// ForgotPassword builds POST /forgot-password.
func ForgotPassword(account string) Request {
	return Request{Method: http.MethodPost, Path: "/forgot-password", Body: ForgotPasswordData{Account: account}}
}

// ResetPassword builds POST /reset-password.
func ResetPassword(data ResetPasswordData) Request {
	return Request{Method: http.MethodPost, Path: "/reset-password", Body: data}
}

// =============================================================================
// ASSISTANTS & CHAT
// =============================================================================

// ListAssistants builds GET /assistants.
func ListAssistants() Request {
	return Request{Method: http.MethodGet, Path: "/assistants"}
}

// GetAssistant builds GET /assistants/{id}.
func GetAssistant(assistantID int64) Request {
	return Request{Method: http.MethodGet, Path: "/assistants/" + id(assistantID)}
}

// CreateConversation builds POST /conversation/{assistantId}.
func CreateConversation(assistantID int64) Request {
	return Request{Method: http.MethodPost, Path: "/conversation/" + id(assistantID)}
}

// DeleteConversation builds DELETE /conversation/{assistantId}/{conversationId}.
func DeleteConversation(assistantID int64, conversationID string) Request {
	return Request{
		Method: http.MethodDelete,
		Path:   "/conversation/" + id(assistantID) + "/" + url.PathEscape(conversationID),
	}
}

// History builds GET /chat/history/{assistantId}. An empty conversationID
// requests the assistant-wide history.
func History(assistantID int64, conversationID string) Request {
	req := Request{Method: http.MethodGet, Path: "/chat/history/" + id(assistantID)}
	if conversationID != "" {
		req.Query = url.Values{"conversation_id": {conversationID}}
	}
	return req
}

// SendMessage builds the non-streaming POST /chat/{assistantId}.
func SendMessage(assistantID int64, data SendMessageData) Request {
	return Request{Method: http.MethodPost, Path: "/chat/" + id(assistantID), Body: data}
}

// UploadAttachment builds POST /chat/{assistantId}/attachments.
func UploadAttachment(assistantID int64, conversationID, filename string, file io.Reader) Request {
	fields := map[string]string{}
	if conversationID != "" {
		fields["conversation_id"] = conversationID
	}
	return Request{
		Method: http.MethodPost,
		Path:   "/chat/" + id(assistantID) + "/attachments",
		Multipart: &Multipart{
			Fields:    fields,
			FileField: "file",
			FileName:  filename,
			File:      file,
		},
	}
}

// =============================================================================
// ADMIN: ASSISTANTS
// =============================================================================

// AdminListAssistants builds GET /admin/assistants.
func AdminListAssistants() Request {
	return Request{Method: http.MethodGet, Path: "/admin/assistants"}
}

// AdminCreateAssistant builds POST /admin/assistants.
func AdminCreateAssistant(in AssistantInput) Request {
	return Request{Method: http.MethodPost, Path: "/admin/assistants", Body: in}
}

// AdminUpdateAssistant builds PUT /admin/assistants/{id}.
func AdminUpdateAssistant(assistantID int64, patch AssistantPatch) Request {
	return Request{Method: http.MethodPut, Path: "/admin/assistants/" + id(assistantID), Body: patch}
}

// AdminDeleteAssistant builds DELETE /admin/assistants/{id}.
func AdminDeleteAssistant(assistantID int64) Request {
	return Request{Method: http.MethodDelete, Path: "/admin/assistants/" + id(assistantID)}
}

// AdminUpdatePrompt builds PUT /admin/assistants/{id}/prompt. The backend
// reads the prompt from the query string.
func AdminUpdatePrompt(assistantID int64, prompt string) Request {
	return Request{
		Method: http.MethodPut,
		Path:   "/admin/assistants/" + id(assistantID) + "/prompt",
		Query:  url.Values{"prompt_content": {prompt}},
	}
}

// AdminUpdateParameters builds PUT /admin/assistants/{id}/parameters.
func AdminUpdateParameters(assistantID int64, params map[string]any) Request {
	if params == nil {
		params = map[string]any{}
	}
	return Request{Method: http.MethodPut, Path: "/admin/assistants/" + id(assistantID) + "/parameters", Body: params}
}

// AdminBindKnowledge builds PUT /admin/assistants/{id}/knowledge_binding.
func AdminBindKnowledge(assistantID int64, documentIDs []int64) Request {
	if documentIDs == nil {
		documentIDs = []int64{}
	}
	return Request{Method: http.MethodPut, Path: "/admin/assistants/" + id(assistantID) + "/knowledge_binding", Body: documentIDs}
}

// =============================================================================
// ADMIN: DOCUMENTS
// =============================================================================

// AdminListDocuments builds GET /admin/docs.
func AdminListDocuments() Request {
	return Request{Method: http.MethodGet, Path: "/admin/docs"}
}

// AdminUploadDocument builds the multipart POST /admin/docs.
func AdminUploadDocument(filename string, file io.Reader) Request {
	return Request{
		Method: http.MethodPost,
		Path:   "/admin/docs",
		Multipart: &Multipart{
			FileField: "file",
			FileName:  filename,
			File:      file,
		},
	}
}

// AdminParseDocument builds POST /admin/docs/{id}/parse.
func AdminParseDocument(documentID int64) Request {
	return Request{Method: http.MethodPost, Path: "/admin/docs/" + id(documentID) + "/parse"}
}

// AdminUpdateDocument builds PUT /admin/docs/{id}.
func AdminUpdateDocument(documentID int64, patch DocumentPatch) Request {
	return Request{Method: http.MethodPut, Path: "/admin/docs/" + id(documentID), Body: patch}
}

// AdminDeleteDocument builds DELETE /admin/docs/{id}.
func AdminDeleteDocument(documentID int64) Request {
	return Request{Method: http.MethodDelete, Path: "/admin/docs/" + id(documentID)}
}

// =============================================================================
// ADMIN: USERS
// =============================================================================

// AdminListUsers builds GET /admin/users.
func AdminListUsers() Request {
	return Request{Method: http.MethodGet, Path: "/admin/users"}
}

// AdminCreateUser builds POST /admin/users.
func AdminCreateUser(in UserInput) Request {
	return Request{Method: http.MethodPost, Path: "/admin/users", Body: in}
}

// AdminUpdateUser builds PUT /admin/users/{id}.
func AdminUpdateUser(userID int64, patch UserPatch) Request {
	return Request{Method: http.MethodPut, Path: "/admin/users/" + id(userID), Body: patch}
}

// AdminDeleteUser builds DELETE /admin/users/{id}.
func AdminDeleteUser(userID int64) Request {
	return Request{Method: http.MethodDelete, Path: "/admin/users/" + id(userID)}
}

// AdminResetUserPassword builds POST /admin/users/{id}/reset_password. An
// empty password lets the backend apply its default.
func AdminResetUserPassword(userID int64, newPassword string) Request {
	req := Request{Method: http.MethodPost, Path: "/admin/users/" + id(userID) + "/reset_password"}
	if newPassword != "" {
		req.Query = url.Values{"new_password": {newPassword}}
	}
	return req
}
