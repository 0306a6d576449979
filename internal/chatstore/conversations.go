// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jeranaias/assistchat/internal/model"
)

// AssistantConversations maps assistant ids to their conversations, most
// recently active first. Assistants keep the order in which they were first
// seen. The JSON form is an object keyed by the decimal assistant id.
type AssistantConversations struct {
	m *orderedmap.OrderedMap[int64, []*model.Conversation]
}

// NewAssistantConversations returns an empty mapping.
func NewAssistantConversations() *AssistantConversations {
	return &AssistantConversations{m: orderedmap.New[int64, []*model.Conversation]()}
}

// List returns the conversations of an assistant. The slice is shared with
// the mapping.
func (a *AssistantConversations) List(assistantID int64) ([]*model.Conversation, bool) {
	return a.m.Get(assistantID)
}

// Set replaces the conversations of an assistant.
func (a *AssistantConversations) Set(assistantID int64, list []*model.Conversation) {
	a.m.Set(assistantID, list)
}

// Delete removes an assistant and its conversations.
func (a *AssistantConversations) Delete(assistantID int64) {
	a.m.Delete(assistantID)
}

// Len returns the number of assistants.
func (a *AssistantConversations) Len() int {
	return a.m.Len()
}

// Assistants returns the assistant ids in insertion order.
func (a *AssistantConversations) Assistants() []int64 {
	ids := make([]int64, 0, a.m.Len())
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Find locates a conversation by id under any assistant.
func (a *AssistantConversations) Find(conversationID string) (assistantID int64, index int, ok bool) {
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		if i := indexOf(pair.Value, conversationID); i >= 0 {
			return pair.Key, i, true
		}
	}
	return 0, -1, false
}

// Clone returns a deep copy.
func (a *AssistantConversations) Clone() *AssistantConversations {
	out := NewAssistantConversations()
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		out.m.Set(pair.Key, cloneList(pair.Value))
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (a *AssistantConversations) MarshalJSON() ([]byte, error) {
	return a.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Keys that are not integers
// make the whole document invalid.
func (a *AssistantConversations) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[int64, []*model.Conversation]()
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	a.m = m
	return nil
}

func indexOf(list []*model.Conversation, conversationID string) int {
	for i, c := range list {
		if c != nil && c.ID == conversationID {
			return i
		}
	}
	return -1
}

func cloneList(list []*model.Conversation) []*model.Conversation {
	out := make([]*model.Conversation, 0, len(list))
	for _, c := range list {
		if c != nil {
			out = append(out, c.Clone())
		}
	}
	return out
}
