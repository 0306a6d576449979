// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// Conversation is an ordered message log scoped to one assistant.
// ID is always issued by the backend or supplied by an explicit restore.
type Conversation struct {
	ID            string       `json:"id"`
	AssistantID   int64        `json:"assistantId"`
	AssistantName string       `json:"assistantName"`
	Messages      []ChatRecord `json:"messages"`
}

// Clone returns a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = CloneMessages(c.Messages)
	return &cp
}

// IsEmpty reports whether the user has not yet said anything in the
// conversation. Greetings and attachment notices do not count.
func (c *Conversation) IsEmpty() bool {
	return !HasUserMessage(c.Messages)
}

// Title derives a display title from the first user message.
func (c *Conversation) Title() string {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			if line, _, _ := strings.Cut(strings.TrimSpace(m.Content), "\n"); line != "" {
				return line
			}
		}
	}
	return "New chat"
}

// LastMessage returns the final message and true, or false for an empty log.
func (c *Conversation) LastMessage() (ChatRecord, bool) {
	if len(c.Messages) == 0 {
		return ChatRecord{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
