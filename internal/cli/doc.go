// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// assistchat.
//
// Every command enters a route through the router guard before it talks to
// the backend, so a command run without a session, or an admin command run
// by a regular user, fails the same way the navigation would be redirected.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Global flags plus the command's raw arguments
//   - Env: Streams, parsed arguments and the wired application
//   - JSONResponse: The --json envelope
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	os.Exit(cli.Execute(ctx, cmd, args, cli.StdIO()))
//
// # Commands Overview
//
// Account:
//   - login, logout, register, forgot-password, reset-password
//
// Chat:
//   - assistants: List or show assistants
//   - conversations: List, start, select or delete conversations
//   - history, send, upload: One-shot conversation commands
//   - chat: Interactive session
//
// Administration (admin role):
//   - admin assistants | docs | users
//
// Other:
//   - status, config, version, help
//
// All commands except chat support --json.
package cli
