// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Well-known keys.
const (
	KeyConversations = "chat-conversations"
	KeyAuth          = "auth"
)

var (
	// ErrNotFound is returned by Get when no value is stored under the key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrInvalidKey is returned for keys that are empty or contain path characters.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("storage: closed")

	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// Storage is a string-keyed byte store. Implementations are safe for
// concurrent use.
type Storage interface {
	// Get returns the stored value or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Close releases resources held by the backend.
	Close() error
}

// Open creates the backend named by backend rooted at dir.
func Open(backend, dir string) (Storage, error) {
	switch strings.ToLower(backend) {
	case BackendFile, "":
		return NewFileStorage(dir)
	case BackendSQLite:
		return NewSQLiteStorage(SQLitePath(dir))
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// ValidateKey checks that key is usable by every backend. Keys double as
// file names for FileStorage, so separators and dot-prefixed names are
// rejected.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\:`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
