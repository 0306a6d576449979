// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ASSISTANTS
// =============================================================================

// Assistant is a configured chat persona offered by the backend.
type Assistant struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Icon            string         `json:"icon"`
	Description     string         `json:"description"`
	PromptContent   string         `json:"prompt_content,omitempty"`
	SystemPrompt    string         `json:"system_prompt,omitempty"`
	ScenePrompt     string         `json:"scene_prompt,omitempty"`
	UserPrefill     string         `json:"user_prefill,omitempty"`
	OpeningMessage  string         `json:"opening_message,omitempty"`
	DefaultPrompt   string         `json:"defaultPrompt,omitempty"`
	ModelParameters map[string]any `json:"model_parameters,omitempty"`
	KnowledgeIDs    []int64        `json:"knowledge_ids,omitempty"`
	UpdateTime      string         `json:"update_time,omitempty"`
}

// =============================================================================
// KNOWLEDGE DOCUMENTS
// =============================================================================

// Parse states reported for uploaded documents.
const (
	ParseStatusUnparsed = "unparsed"
	ParseStatusParsed   = "parsed"
	ParseStatusFailed   = "failed"
)

// Document is a knowledge file managed from the admin area.
type Document struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	OriginalFilename string         `json:"original_filename,omitempty"`
	FilePath         string         `json:"file_path,omitempty"`
	FileSize         int64          `json:"file_size,omitempty"`
	ContentType      string         `json:"content_type,omitempty"`
	AssistantID      *int64         `json:"assistant_id"`
	ParseStatus      string         `json:"parse_status"`
	ParsedAt         string         `json:"parsed_at,omitempty"`
	Parameters       map[string]any `json:"parameters,omitempty"`
	Description      string         `json:"description,omitempty"`
	UploadTime       string         `json:"upload_time,omitempty"`
	UpdateTime       string         `json:"update_time,omitempty"`
}

// =============================================================================
// USERS
// =============================================================================

// Roles understood by the client.
const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// User is an account as listed by the admin user endpoints.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role"`
	CreateTime string `json:"create_time,omitempty"`
}
