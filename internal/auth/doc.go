// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the session token, account and role.
//
// The Store mirrors the token into the API client's Authorization default
// header on every change, including the initial hydration from storage, and
// persists its fields under the "auth" storage key.
//
// # Usage
//
//	store := auth.New(client, auth.WithStorage(st))
//	if err := store.Login(ctx, client, "alice", password); err != nil { ... }
//	store.IsLoggedIn() // true
//	store.Logout()     // keeps the account for the next login prompt
package auth
