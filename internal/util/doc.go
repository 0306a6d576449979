// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the storage and CLI layers.
//
// # Key Functions
//
//   - WriteFileAtomic: crash-safe file replacement with fsync
//   - TruncateWidth: display-width aware truncation for CJK-heavy chat text
//   - Preview: single-line preview of a chat message
//
// # Usage
//
//	err := util.WriteFileAtomic(path, data, 0600)
//	fmt.Println(util.Preview(msg.Content, 40))
package util
