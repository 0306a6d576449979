// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app builds the process-wide context object.
//
// An App is constructed once at startup from the configuration. It opens
// local storage, creates the API client, hydrates the auth and conversation
// stores from storage and sets up the router guard. Close flushes pending
// writes and releases storage.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/auth"
	"github.com/jeranaias/assistchat/internal/chatstore"
	"github.com/jeranaias/assistchat/internal/config"
	"github.com/jeranaias/assistchat/internal/router"
	"github.com/jeranaias/assistchat/internal/storage"
)

// App holds every long-lived component.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Storage storage.Storage
	API     *api.Client
	Auth    *auth.Store
	Chats   *chatstore.Store
	Router  *router.Router

	cancel context.CancelFunc
	closed bool
}

// Options overrides parts of the wiring, mainly for tests.
type Options struct {
	// Logger defaults to a text logger on stderr at the configured level.
	Logger *slog.Logger

	// Storage replaces the configured backend. App.Close closes it.
	Storage storage.Storage

	// HTTPClient replaces the API client's transport.
	HTTPClient *http.Client
}

// New wires an App from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.Logging.Level)
	}

	st := opts.Storage
	if st == nil {
		dir, err := cfg.ResolveDataDir()
		if err != nil {
			return nil, err
		}
		st, err = storage.Open(cfg.Storage.Backend, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
		}
	}
	if fs, ok := st.(*storage.FileStorage); ok {
		fs.SetLogger(logger)
	}

	client := api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.API.Timeout()).
		WithUserAgent(cfg.API.UserAgent).
		WithLogger(logger)
	if opts.HTTPClient != nil {
		client.WithHTTPClient(opts.HTTPClient)
	}

	persist := []storage.PersisterOption{storage.WithRate(cfg.Storage.WriteRatePerSec)}
	authStore := auth.New(client,
		auth.WithLogger(logger),
		auth.WithStorage(st, persist...))
	chats := chatstore.New(client,
		chatstore.WithLogger(logger),
		chatstore.WithStorage(st, persist...))

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Storage: st,
		API:     client,
		Auth:    authStore,
		Chats:   chats,
		Router:  router.New(router.DefaultRoutes(), authStore).WithLogger(logger),
	}

	if fs, ok := st.(*storage.FileStorage); ok && cfg.Storage.Watch {
		ctx, cancel := context.WithCancel(context.Background())
		if err := fs.Watch(ctx, storage.KeyAuth, authStore.Reload); err != nil {
			// Sync across processes is best effort.
			logger.Warn("auth watch unavailable", "err", err)
			cancel()
		} else {
			a.cancel = cancel
		}
	}
	return a, nil
}

// Navigate routes to path through the guard.
func (a *App) Navigate(path string) (router.Match, error) {
	return a.Router.Navigate(path)
}

// Logout clears the session and returns to the login screen. With forget
// the account is cleared too.
func (a *App) Logout(forget bool) (router.Match, error) {
	a.Auth.ClearAuth(auth.ClearOptions{KeepAccount: !forget})
	return a.Router.Navigate(router.PathLogin)
}

// Flush waits for pending writes of both stores.
func (a *App) Flush() {
	a.Auth.Flush()
	a.Chats.Flush()
}

// Close stops watching, writes pending state and closes storage.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	if a.cancel != nil {
		a.cancel()
	}
	return errors.Join(
		a.Auth.Close(),
		a.Chats.Close(),
		a.Storage.Close(),
	)
}

// =============================================================================
// LOGGING
// =============================================================================

// ParseLevel maps a config level name to a slog level. Unknown names map
// to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger returns a text logger writing to w.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}
