// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatstore holds the client's conversation state.
//
// A Store owns the mapping from assistant to conversations and the current
// selection. It coordinates conversation creation and deletion with the
// backend, keeps at most one opening greeting per conversation, and
// publishes a JSON snapshot of the mapping to its observers after every
// structural change. A storage-backed Store hydrates from the
// "chat-conversations" record at construction and persists through a
// storage.Persister.
//
// # Key Types
//
//   - Store: the conversation state and its operations
//   - AssistantConversations: ordered map from assistant id to conversations
//   - Backend: the remote calls the store depends on (satisfied by *api.Client)
//   - Selection: the current assistant and conversation
//
// # Usage
//
//	store := chatstore.New(client, chatstore.WithStorage(st), chatstore.WithLogger(logger))
//	defer store.Close()
//
//	conv, err := store.CreateConversation(ctx, 7, "Bot", "", nil)
//	reply, err := store.SendMessage(ctx, 7, conv.ID, "hello")
//
// # Concurrency
//
// All methods are safe for concurrent use. The store lock is never held
// across a backend call; state is re-read after the call returns.
// Observers run under the lock, in mutation order, and must not call back
// into the store.
package chatstore
