// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/assistchat/internal/util"
)

// =============================================================================
// FILE STORAGE
// =============================================================================

// FileStorage stores each key as <dir>/<key>.json with 0600 permissions.
type FileStorage struct {
	dir    string
	logger *slog.Logger

	mu          sync.Mutex
	lastWritten map[string][]byte
	closed      bool
}

// NewFileStorage creates dir if needed and returns a FileStorage rooted there.
func NewFileStorage(dir string) (*FileStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileStorage{
		dir:         abs,
		logger:      slog.Default(),
		lastWritten: make(map[string][]byte),
	}, nil
}

// SetLogger replaces the logger used for watcher diagnostics.
func (s *FileStorage) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Dir returns the directory holding the files.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Path returns the file backing key.
func (s *FileStorage) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get implements Storage.
func (s *FileStorage) Get(key string) ([]byte, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set implements Storage.
func (s *FileStorage) Set(key string, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastWritten[key] = append([]byte(nil), value...)
	s.mu.Unlock()

	if err := util.WriteFileAtomic(s.Path(key), value, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove implements Storage.
func (s *FileStorage) Remove(key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastWritten[key] = nil
	s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Close implements Storage.
func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStorage) check(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// =============================================================================
// CHANGE WATCHING
// =============================================================================

// Watch calls onChange whenever another writer changes or removes the file
// backing key. Changes made through this FileStorage are ignored. Watching
// stops when ctx is cancelled.
func (s *FileStorage) Watch(ctx context.Context, key string, onChange func()) error {
	if err := s.check(key); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: atomic writes replace the file, which would drop
	// a watch placed on the file itself.
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	target := s.Path(key)
	go s.processEvents(ctx, watcher, key, target, onChange)
	return nil
}

func (s *FileStorage) processEvents(ctx context.Context, watcher *fsnotify.Watcher, key, target string, onChange func()) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			if s.isOwnWrite(key, target) {
				continue
			}
			s.logger.Debug("storage record changed externally", "key", key, "op", event.Op.String())
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("storage watcher error", "key", key, "err", err)
		}
	}
}

// isOwnWrite reports whether the file content matches what this instance
// last wrote (or both are absent).
func (s *FileStorage) isOwnWrite(key, path string) bool {
	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false
	}

	s.mu.Lock()
	last, known := s.lastWritten[key]
	s.mu.Unlock()

	if !known {
		return false
	}
	if current == nil {
		return last == nil
	}
	return last != nil && bytes.Equal(current, last)
}
