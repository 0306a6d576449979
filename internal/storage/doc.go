// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the client's local key/value persistence.
//
// The client keeps two records: the serialized conversation mapping and the
// auth session. Each is stored under a fixed key in a Storage backend. Writes
// from the stores go through a Persister so that saving never blocks or
// fails the mutation that triggered it.
//
// # Key Types
//
//   - Storage: key/value backend interface
//   - FileStorage: one JSON file per key under a data directory, with change watching
//   - SQLiteStorage: a single kv table in a SQLite database
//   - MemoryStorage: in-process map, used for tests and ephemeral sessions
//   - Persister: coalescing, rate-limited background writer for one key
//
// # Usage
//
//	st, err := storage.Open(storage.BackendFile, dataDir)
//	p := storage.NewPersister(st, "chat-conversations", storage.WithLogger(logger))
//	p.Save(snapshot)
//	defer p.Close()
//
// # Storage Location
//
// By default data lives in ~/.assistchat/data/.
package storage
