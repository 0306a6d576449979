// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// MaxRedirects bounds the redirects followed by one navigation.
const MaxRedirects = 8

var (
	// ErrRouteNotFound is returned for paths no route matches.
	ErrRouteNotFound = errors.New("route not found")

	// ErrRedirectLoop is returned when redirects exceed MaxRedirects.
	ErrRedirectLoop = errors.New("too many redirects")
)

// Session is the auth state the guard reads. *auth.Store implements it.
type Session interface {
	IsLoggedIn() bool
	IsAdmin() bool
}

// =============================================================================
// GUARD
// =============================================================================

// Decision is the guard's verdict. An empty Redirect means proceed.
type Decision struct {
	Redirect string
	Reason   string
}

// Proceed reports whether navigation may continue to the target.
func (d Decision) Proceed() bool {
	return d.Redirect == ""
}

// Guard decides whether navigation to m may proceed for session.
func Guard(m Match, session Session) Decision {
	loggedIn := session != nil && session.IsLoggedIn()
	admin := session != nil && session.IsAdmin()

	if m.RequiresAuth() && !loggedIn {
		return Decision{Redirect: PathLogin, Reason: "login required"}
	}
	if m.RequiresAdmin() && !admin {
		return Decision{Redirect: PathAssistants, Reason: "admin role required"}
	}
	if m.Path == PathLogin && loggedIn {
		return Decision{Redirect: PathAssistants, Reason: "already logged in"}
	}
	return Decision{}
}

// =============================================================================
// ROUTER
// =============================================================================

// Router resolves paths against a route table and guards every navigation.
type Router struct {
	routes  []Route
	session Session
	logger  *slog.Logger

	mu      sync.Mutex
	current Match
	started bool
}

// New creates a router over routes using session for guard decisions.
func New(routes []Route, session Session) *Router {
	return &Router{
		routes:  routes,
		session: session,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger used for redirect tracing.
func (r *Router) WithLogger(l *slog.Logger) *Router {
	if l != nil {
		r.logger = l
	}
	return r
}

// Resolve matches path without guarding. Query strings are ignored.
func (r *Router) Resolve(path string) (Match, error) {
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		path = u.Path
	}
	chain, params, ok := match(r.routes, splitPath(path), nil, map[string]string{})
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}
	return Match{Path: "/" + strings.Join(splitPath(path), "/"), Chain: chain, Params: params}, nil
}

// Start performs the initial navigation. It is guarded like any other.
func (r *Router) Start(path string) (Match, error) {
	m, err := r.Navigate(path)
	if err == nil {
		r.mu.Lock()
		r.started = true
		r.mu.Unlock()
	}
	return m, err
}

// Navigate resolves path, applies route redirects and the guard, and
// returns the final location. The current location is only updated on
// success.
func (r *Router) Navigate(path string) (Match, error) {
	target := path
	for hops := 0; hops <= MaxRedirects; hops++ {
		m, err := r.Resolve(target)
		if err != nil {
			return Match{}, err
		}

		if redirect := m.Route().Redirect; redirect != "" {
			r.logger.Debug("route redirect", "from", m.Path, "to", redirect)
			target = redirect
			continue
		}

		d := Guard(m, r.session)
		if !d.Proceed() {
			r.logger.Debug("navigation redirected", "from", m.Path, "to", d.Redirect, "reason", d.Reason)
			target = d.Redirect
			continue
		}

		r.mu.Lock()
		r.current = m
		r.mu.Unlock()
		return m, nil
	}
	return Match{}, fmt.Errorf("%w navigating to %s", ErrRedirectLoop, path)
}

// Current returns the last successful location.
func (r *Router) Current() Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Started reports whether Start has succeeded.
func (r *Router) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}
