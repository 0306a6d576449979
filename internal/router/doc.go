// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router maps client paths to screens and guards navigation.
//
// Routes carry static metadata (RequiresAuth, RequiresAdmin). Before every
// navigation, including the initial one, the guard inspects the matched
// route and its ancestors against the current session and either lets the
// navigation proceed or redirects it.
//
// # Key Types
//
//   - Route: path pattern, metadata, optional redirect and children
//   - Match: the resolved route chain and path parameters
//   - Decision: the guard's verdict with a reason
//   - Router: route table plus current location
//
// # Guard Rules
//
//   - auth required and not logged in: redirect to /login
//   - admin required and role is not admin: redirect to /assistants
//   - /login while logged in: redirect to /assistants
//   - otherwise: proceed
//
// # Usage
//
//	r := router.New(router.DefaultRoutes(), authStore)
//	m, err := r.Start("/chat/7")
//	if m.Path != "/chat/7" { ... } // redirected
package router
