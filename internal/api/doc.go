// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api talks to the assistant-chat backend over HTTP.
//
// Every endpoint has a pure request builder (Login, CreateConversation,
// AdminUpdateDocument, ...) returning a Request description, and a typed
// Client method that executes it. Builders do no I/O, which keeps them
// trivially testable. The Client adds the base URL, the default headers and
// response decoding. There is no retry or caching: failures are returned to
// the caller.
//
// # Key Types
//
//   - Request: method, path, query and body of one backend call
//   - Client: executes Requests with a mutable set of default headers
//   - APIError: non-2xx responses and success=false envelopes
//
// # Usage
//
//	client := api.NewClient("http://127.0.0.1:8000/api").WithTimeout(30 * time.Second)
//	client.SetDefaultHeader("Authorization", "Bearer "+token)
//	resp, err := client.CreateConversation(ctx, assistantID)
//
// # Authentication
//
// The client never attaches credentials per call. The auth store owns the
// Authorization default header and updates it whenever the session token
// changes.
package api
