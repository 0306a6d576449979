// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// =============================================================================
// SINGLE OPENING FILTER
// =============================================================================

func TestEnforceSingleOpening(t *testing.T) {
	open := func(s string) ChatRecord { return NewOpeningMessage(s) }
	user := NewUserMessage
	asst := NewAssistantMessage

	tests := []struct {
		name string
		in   []ChatRecord
		want []string
	}{
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
		{
			name: "no opening",
			in:   []ChatRecord{user("a"), asst("b")},
			want: []string{"a", "b"},
		},
		{
			name: "single opening kept",
			in:   []ChatRecord{open("hi"), user("a"), asst("b")},
			want: []string{"hi", "a", "b"},
		},
		{
			name: "later openings dropped",
			in:   []ChatRecord{open("hi"), user("a"), open("again"), asst("b"), open("third")},
			want: []string{"hi", "a", "b"},
		},
		{
			name: "first opening wins even when not first entry",
			in:   []ChatRecord{user("a"), open("late"), open("later")},
			want: []string{"a", "late"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EnforceSingleOpening(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			openings := 0
			for i, m := range got {
				if m.Content != tc.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, m.Content, tc.want[i])
				}
				if m.IsOpening() {
					openings++
				}
			}
			if openings > 1 {
				t.Errorf("result has %d opening messages", openings)
			}
		})
	}
}

func TestEnforceSingleOpening_DoesNotAliasInput(t *testing.T) {
	in := []ChatRecord{
		{Role: RoleUser, Content: "file", MessageType: MessageAttachment,
			Attachments: []ChatAttachment{{ID: "1", Filename: "a.pdf"}}},
	}
	out := EnforceSingleOpening(in)
	out[0].Attachments[0].Filename = "changed.pdf"
	if in[0].Attachments[0].Filename != "a.pdf" {
		t.Error("input attachments were modified through the result")
	}
}

// =============================================================================
// MESSAGE HELPERS
// =============================================================================

func TestNewOpeningMessage(t *testing.T) {
	m := NewOpeningMessage("Welcome")
	if m.Role != RoleAssistant || !m.HideName || !m.IsOpening() {
		t.Errorf("unexpected opening message: %+v", m)
	}
}

func TestHasUserMessage(t *testing.T) {
	if HasUserMessage([]ChatRecord{NewOpeningMessage("hi"), NewAssistantMessage("x")}) {
		t.Error("assistant-only log reported a user message")
	}
	if !HasUserMessage([]ChatRecord{NewOpeningMessage("hi"), NewUserMessage("q")}) {
		t.Error("user message not detected")
	}
}

func TestChatRecord_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(NewOpeningMessage("hello"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"hideName":true`, `"message_type":"opening"`, `"role":"assistant"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "attachments") {
		t.Errorf("empty attachments should be omitted: %s", s)
	}
}

// =============================================================================
// CONVERSATION
// =============================================================================

func TestConversation_CloneIsDeep(t *testing.T) {
	c := &Conversation{ID: "c1", AssistantID: 3, Messages: []ChatRecord{NewUserMessage("a")}}
	cp := c.Clone()
	cp.Messages[0].Content = "b"
	cp.Messages = append(cp.Messages, NewUserMessage("c"))
	if c.Messages[0].Content != "a" || len(c.Messages) != 1 {
		t.Errorf("original mutated via clone: %+v", c.Messages)
	}
	var nilConv *Conversation
	if nilConv.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestConversation_TitleAndEmpty(t *testing.T) {
	c := &Conversation{Messages: []ChatRecord{NewOpeningMessage("hi")}}
	if !c.IsEmpty() {
		t.Error("conversation with only a greeting should be empty")
	}
	if c.Title() != "New chat" {
		t.Errorf("Title() = %q", c.Title())
	}
	c.Messages = append(c.Messages, NewUserMessage("  How do I reset?\nmore"))
	if c.IsEmpty() {
		t.Error("conversation with a user message should not be empty")
	}
	if c.Title() != "How do I reset?" {
		t.Errorf("Title() = %q", c.Title())
	}
}
