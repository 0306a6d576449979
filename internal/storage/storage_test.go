// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/assistchat/internal/util"
)

// backends returns one instance of every backend, each rooted in its own
// temp directory.
func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	sqlite, err := NewSQLiteStorage(SQLitePath(t.TempDir()))
	require.NoError(t, err)

	all := map[string]Storage{
		BackendFile:   file,
		BackendSQLite: sqlite,
		BackendMemory: NewMemoryStorage(),
	}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

// =============================================================================
// BACKEND CONTRACT
// =============================================================================

func TestStorage_Contract(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(KeyAuth)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Set(KeyAuth, []byte(`{"token":"a"}`)))
			got, err := st.Get(KeyAuth)
			require.NoError(t, err)
			assert.Equal(t, `{"token":"a"}`, string(got))

			require.NoError(t, st.Set(KeyAuth, []byte(`{"token":"b"}`)))
			got, err = st.Get(KeyAuth)
			require.NoError(t, err)
			assert.Equal(t, `{"token":"b"}`, string(got))

			require.NoError(t, st.Remove(KeyAuth))
			_, err = st.Get(KeyAuth)
			assert.ErrorIs(t, err, ErrNotFound)

			// Removing twice is fine.
			assert.NoError(t, st.Remove(KeyAuth))
		})
	}
}

func TestStorage_RejectsInvalidKeys(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", `a\b`, ".hidden", "c:x"} {
				err := st.Set(key, []byte("x"))
				assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(BackendSQLite, dir)
	require.NoError(t, err)
	defer st.Close()
	_, statErr := os.Stat(filepath.Join(dir, SQLiteFileName))
	assert.NoError(t, statErr)

	_, err = Open("redis", dir)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	path := SQLitePath(t.TempDir())

	st, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(KeyConversations, []byte(`{"7":[]}`)))
	require.NoError(t, st.Set(KeyAuth, []byte(`{}`)))
	require.NoError(t, st.Close())

	st, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Get(KeyConversations)
	require.NoError(t, err)
	assert.Equal(t, `{"7":[]}`, string(got))

	keys, err := st.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyAuth, KeyConversations}, keys)
}

func TestFileStorage_FilePermissions(t *testing.T) {
	st, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Set(KeyAuth, []byte("{}")))

	info, err := os.Stat(st.Path(KeyAuth))
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 && os.PathSeparator == '/' {
		t.Errorf("perm = %o, want 0600", info.Mode().Perm())
	}
}

// =============================================================================
// WATCH
// =============================================================================

func TestFileStorage_WatchSeesExternalWrites(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStorage(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, st.Watch(ctx, KeyAuth, func() { calls.Add(1) }))

	// Own writes are ignored.
	require.NoError(t, st.Set(KeyAuth, []byte(`{"token":"mine"}`)))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// A second process writing the same file is noticed.
	require.NoError(t, util.WriteFileAtomic(st.Path(KeyAuth), []byte(`{"token":"theirs"}`), 0600))
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	// Unrelated keys do not fire.
	before := calls.Load()
	require.NoError(t, util.WriteFileAtomic(st.Path(KeyConversations), []byte(`{}`), 0600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, before, calls.Load())
}

// =============================================================================
// PERSISTER
// =============================================================================

// failingStorage rejects every write.
type failingStorage struct {
	*MemoryStorage
}

func (failingStorage) Set(string, []byte) error { return errors.New("quota exceeded") }

func TestPersister_CoalescesAndFlushes(t *testing.T) {
	st := NewMemoryStorage()
	p := NewPersister(st, KeyConversations, WithRate(1))
	defer p.Close()

	for i := 0; i < 50; i++ {
		p.Save([]byte{byte('a' + i%26)})
	}
	p.Save([]byte("final"))
	p.Flush()

	got, err := st.Get(KeyConversations)
	require.NoError(t, err)
	assert.Equal(t, "final", string(got))

	writes, failures := p.Stats()
	assert.Less(t, writes, 50, "snapshots should be coalesced")
	assert.Zero(t, failures)
}

// slowStorage holds each write until release is closed.
type slowStorage struct {
	*MemoryStorage
	entered chan struct{}
	release chan struct{}
}

func (s *slowStorage) Set(key string, data []byte) error {
	s.entered <- struct{}{}
	<-s.release
	return s.MemoryStorage.Set(key, data)
}

func TestPersister_PendingCoversInFlightWrite(t *testing.T) {
	st := &slowStorage{MemoryStorage: NewMemoryStorage(), entered: make(chan struct{}, 2), release: make(chan struct{})}
	p := NewPersister(st, KeyAuth, WithRate(0))
	defer p.Close()

	assert.False(t, p.Pending())
	p.Save([]byte("x"))
	<-st.entered
	assert.True(t, p.Pending(), "write in progress")

	close(st.release)
	p.Flush()
	assert.False(t, p.Pending())
}

func TestPersister_SaveNilRemoves(t *testing.T) {
	st := NewMemoryStorage()
	require.NoError(t, st.Set(KeyAuth, []byte("x")))

	p := NewPersister(st, KeyAuth, WithRate(0))
	p.Save(nil)
	require.NoError(t, p.Close())

	_, err := st.Get(KeyAuth)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersister_WriteFailureIsSwallowed(t *testing.T) {
	p := NewPersister(failingStorage{NewMemoryStorage()}, KeyAuth, WithRate(0))
	defer p.Close()

	p.Save([]byte("x"))
	p.Flush()

	writes, failures := p.Stats()
	assert.Equal(t, 0, writes)
	assert.Equal(t, 1, failures)
}

func TestPersister_CloseWritesTailAndIsIdempotent(t *testing.T) {
	st := NewMemoryStorage()
	p := NewPersister(st, KeyAuth, WithRate(0.001))

	p.Save([]byte("first"))
	p.Save([]byte("tail"))
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	got, err := st.Get(KeyAuth)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(got))

	// Saves after close are dropped, Flush returns immediately.
	p.Save([]byte("late"))
	p.Flush()
	got, _ = st.Get(KeyAuth)
	assert.Equal(t, "tail", string(got))
}
