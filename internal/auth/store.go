// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/model"
	"github.com/jeranaias/assistchat/internal/storage"
)

// HeaderAuthorization is the default header the store maintains.
const HeaderAuthorization = "Authorization"

// HeaderSetter receives the Authorization header. *api.Client implements it.
type HeaderSetter interface {
	SetDefaultHeader(name, value string)
	DeleteDefaultHeader(name string)
}

// Authenticator performs the login call. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, account, password string) (*api.LoginResponse, error)
}

// Payload is the input to SetAuth. Empty optional fields clear the stored
// value.
type Payload struct {
	Token   string
	Account string
	Role    string
}

// ClearOptions controls ClearAuth.
type ClearOptions struct {
	// KeepAccount retains the account so the next login can prefill it.
	KeepAccount bool
}

// Session is a copy of the store's fields.
type Session struct {
	Token   string
	Account string
	Role    string
}

// persisted is the on-disk form. Empty values are written as null.
type persisted struct {
	Token   *string `json:"token"`
	Account *string `json:"account"`
	Role    *string `json:"role"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the auth session.
type Store struct {
	headers HeaderSetter
	logger  *slog.Logger

	storage     storage.Storage
	persistOpts []storage.PersisterOption
	persister   *storage.Persister

	mu      sync.RWMutex
	session Session
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorage hydrates the session from st and persists every change.
func WithStorage(st storage.Storage, opts ...storage.PersisterOption) Option {
	return func(s *Store) {
		s.storage = st
		s.persistOpts = opts
	}
}

// New creates a store and applies the hydrated token to headers, which may
// be nil.
func New(headers HeaderSetter, opts ...Option) *Store {
	s := &Store{
		headers: headers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.storage != nil {
		s.session = s.load()
		popts := append([]storage.PersisterOption{storage.WithLogger(s.logger)}, s.persistOpts...)
		s.persister = storage.NewPersister(s.storage, storage.KeyAuth, popts...)
	}
	s.applyHeader(s.session.Token)
	return s
}

func (s *Store) load() Session {
	data, err := s.storage.Get(storage.KeyAuth)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read auth state", "err", err)
		}
		return Session{}
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("discarding malformed auth state", "err", err)
		return Session{}
	}
	return Session{Token: deref(p.Token), Account: deref(p.Account), Role: deref(p.Role)}
}

func (s *Store) applyHeader(token string) {
	if s.headers == nil {
		return
	}
	if token != "" {
		s.headers.SetDefaultHeader(HeaderAuthorization, "Bearer "+token)
	} else {
		s.headers.DeleteDefaultHeader(HeaderAuthorization)
	}
}

// update applies fn to the session, re-applies the header and schedules a
// write.
func (s *Store) update(fn func(Session) Session) {
	s.mu.Lock()
	next := fn(s.session)
	s.session = next
	s.applyHeader(next.Token)
	if s.persister != nil {
		data, err := json.Marshal(persisted{
			Token:   nullable(next.Token),
			Account: nullable(next.Account),
			Role:    nullable(next.Role),
		})
		if err != nil {
			s.logger.Error("failed to serialize auth state", "err", err)
		} else {
			s.persister.Save(data)
		}
	}
	s.mu.Unlock()
}

// SetAuth replaces every field of the session.
func (s *Store) SetAuth(p Payload) {
	s.update(func(Session) Session {
		return Session{Token: p.Token, Account: p.Account, Role: p.Role}
	})
}

// ClearAuth clears the token and role, and the account unless
// opts.KeepAccount is set.
func (s *Store) ClearAuth(opts ClearOptions) {
	s.update(func(cur Session) Session {
		if opts.KeepAccount {
			return Session{Account: cur.Account}
		}
		return Session{}
	})
}

// Reload re-reads the persisted session, picking up a login or logout made
// by another process. It does not write back. While a local change is still
// waiting to be written the reload is skipped: that write lands after the
// external one and becomes the persisted state.
func (s *Store) Reload() {
	if s.storage == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persister != nil && s.persister.Pending() {
		s.logger.Debug("auth reload skipped, local change pending")
		return
	}
	next := s.load()
	if next == s.session {
		return
	}
	s.session = next
	s.applyHeader(next.Token)
	s.logger.Debug("auth state reloaded", "logged_in", next.Token != "")
}

// Login authenticates against the backend and stores the new session.
func (s *Store) Login(ctx context.Context, client Authenticator, account, password string) error {
	resp, err := client.Login(ctx, account, password)
	if err != nil {
		return fmt.Errorf("login as %s: %w", account, err)
	}
	s.SetAuth(Payload{Token: resp.Token, Account: account, Role: resp.Role})
	return nil
}

// Logout ends the session but remembers the account.
func (s *Store) Logout() {
	s.ClearAuth(ClearOptions{KeepAccount: true})
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Session returns a copy of the current fields.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the session token, or "".
func (s *Store) Token() string { return s.Session().Token }

// Account returns the last account, or "".
func (s *Store) Account() string { return s.Session().Account }

// Role returns the session role, or "".
func (s *Store) Role() string { return s.Session().Role }

// IsLoggedIn reports whether a token is present.
func (s *Store) IsLoggedIn() bool { return s.Token() != "" }

// IsAdmin reports whether the session role is admin.
func (s *Store) IsAdmin() bool { return s.Role() == model.UserRoleAdmin }

// Flush blocks until the latest change is written.
func (s *Store) Flush() {
	if s.persister != nil {
		s.persister.Flush()
	}
}

// Close writes any pending change and stops the background writer.
func (s *Store) Close() error {
	if s.persister != nil {
		return s.persister.Close()
	}
	return nil
}
