// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType classifies a chat record. The zero value is treated as text.
type MessageType string

const (
	MessageText       MessageType = "text"
	MessageAttachment MessageType = "attachment"
	MessageOpening    MessageType = "opening"
)

// ChatAttachment describes a file uploaded into a conversation.
type ChatAttachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	UploadedAt  int64  `json:"uploaded_at,omitempty"`
}

// ChatRecord is a single chat turn.
type ChatRecord struct {
	Role        Role             `json:"role"`
	Content     string           `json:"content"`
	HideName    bool             `json:"hideName,omitempty"`
	MessageType MessageType      `json:"message_type,omitempty"`
	Attachments []ChatAttachment `json:"attachments,omitempty"`
}

// NewUserMessage creates a plain text user message.
func NewUserMessage(content string) ChatRecord {
	return ChatRecord{Role: RoleUser, Content: content, MessageType: MessageText}
}

// NewAssistantMessage creates a plain text assistant message.
func NewAssistantMessage(content string) ChatRecord {
	return ChatRecord{Role: RoleAssistant, Content: content, MessageType: MessageText}
}

// NewOpeningMessage creates the assistant greeting shown at the top of a
// conversation. The speaker name is hidden.
func NewOpeningMessage(content string) ChatRecord {
	return ChatRecord{
		Role:        RoleAssistant,
		Content:     content,
		HideName:    true,
		MessageType: MessageOpening,
	}
}

// IsOpening reports whether the record is an opening greeting.
func (m ChatRecord) IsOpening() bool {
	return m.MessageType == MessageOpening
}

// Clone returns a copy that shares no slices with m.
func (m ChatRecord) Clone() ChatRecord {
	if m.Attachments != nil {
		m.Attachments = append([]ChatAttachment(nil), m.Attachments...)
	}
	return m
}

// =============================================================================
// MESSAGE LIST HELPERS
// =============================================================================

// EnforceSingleOpening returns messages with every opening record after the
// first one removed. Relative order of the retained records is unchanged.
// The input slice is not modified.
func EnforceSingleOpening(messages []ChatRecord) []ChatRecord {
	out := make([]ChatRecord, 0, len(messages))
	seenOpening := false
	for _, m := range messages {
		if m.IsOpening() {
			if seenOpening {
				continue
			}
			seenOpening = true
		}
		out = append(out, m.Clone())
	}
	return out
}

// HasOpening reports whether any record in messages is an opening greeting.
func HasOpening(messages []ChatRecord) bool {
	for _, m := range messages {
		if m.IsOpening() {
			return true
		}
	}
	return false
}

// HasUserMessage reports whether any record in messages was sent by the user.
func HasUserMessage(messages []ChatRecord) bool {
	for _, m := range messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

// CloneMessages deep-copies a message list. A nil input yields an empty list.
func CloneMessages(messages []ChatRecord) []ChatRecord {
	out := make([]ChatRecord, len(messages))
	for i, m := range messages {
		out[i] = m.Clone()
	}
	return out
}
