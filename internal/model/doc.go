// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the value types shared by the chat client.
//
// Everything here is plain data with JSON tags matching the backend's wire
// format. The types carry no behaviour beyond small helpers (cloning,
// classification of message kinds) so they can be passed freely between the
// API client, the conversation store and the CLI.
//
// # Key Types
//
//   - ChatRecord: a single chat turn, optionally an opening greeting or an attachment notice
//   - ChatAttachment: metadata of a file uploaded into a conversation
//   - Conversation: an ordered message log scoped to one assistant
//   - Assistant, Document, User: admin-facing backend resources
//
// # Usage
//
// Strip duplicate opening messages from a replayed history:
//
//	msgs := model.EnforceSingleOpening(history)
//
// Build the synthetic greeting for a fresh conversation:
//
//	conv.Messages = []model.ChatRecord{model.NewOpeningMessage(text)}
package model
