// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to files for sharing or archiving.
//
// # Key Types
//
//   - Exporter: Converts a conversation to bytes in one format
//   - Options: Output directory, metadata and theme
//
// # Supported Formats
//
//   - JSON: The stored conversation with export metadata
//   - Markdown: Human-readable with YAML frontmatter
//   - HTML: Standalone page with embedded CSS
//
// # Usage
//
//	exporter, err := export.New("markdown", opts)
//	path, err := export.ExportToFile(conv, exporter, opts)
package export
