// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for assistchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - APIConfig: Backend URL, timeout and user agent
//   - StorageConfig: Local persistence backend and data directory
//   - LoggingConfig: Log level
//   - UIConfig: Terminal rendering options
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ASSISTCHAT_*)
//   - ~/.assistchat/config.toml
//   - ~/.assistchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(cfg.API.BaseURL).WithTimeout(cfg.API.Timeout())
package config
