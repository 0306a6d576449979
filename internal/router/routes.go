// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strconv"
	"strings"
)

// Well-known paths.
const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathAssistants     = "/assistants"
	PathChat           = "/chat/:id"
	PathAdmin          = "/admin"
)

// Meta is the static guard metadata of a route. Children inherit the
// requirements of their ancestors.
type Meta struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

// Route is one entry of the route table. Child paths are relative to the
// parent. A non-empty Redirect sends navigation elsewhere before guarding.
type Route struct {
	Path     string
	Name     string
	Redirect string
	Meta     Meta
	Children []Route
}

// DefaultRoutes returns the client's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathRoot, Redirect: PathLogin},
		{Path: PathLogin, Name: "login"},
		{Path: PathRegister, Name: "register"},
		{Path: PathForgotPassword, Name: "forgot-password"},
		{Path: PathAssistants, Name: "assistants", Meta: Meta{RequiresAuth: true}},
		{Path: PathChat, Name: "chat", Meta: Meta{RequiresAuth: true}},
		{
			Path: PathAdmin,
			Name: "admin",
			Meta: Meta{RequiresAuth: true, RequiresAdmin: true},
			Children: []Route{
				{Path: "assistants", Name: "admin-assistants"},
				{Path: "docs", Name: "admin-docs"},
				{Path: "users", Name: "admin-users"},
			},
		},
	}
}

// ChatPath returns the chat route for an assistant.
func ChatPath(assistantID int64) string {
	return "/chat/" + strconv.FormatInt(assistantID, 10)
}

// =============================================================================
// MATCHING
// =============================================================================

// Match is a resolved location.
type Match struct {
	// Path is the concrete path that was matched.
	Path string
	// Chain holds the matched route and its ancestors, outermost first.
	Chain  []Route
	Params map[string]string
}

// Route returns the innermost matched route.
func (m Match) Route() Route {
	if len(m.Chain) == 0 {
		return Route{}
	}
	return m.Chain[len(m.Chain)-1]
}

// Name returns the innermost route name.
func (m Match) Name() string {
	return m.Route().Name
}

// RequiresAuth reports whether the route or an ancestor requires a session.
func (m Match) RequiresAuth() bool {
	for _, r := range m.Chain {
		if r.Meta.RequiresAuth {
			return true
		}
	}
	return false
}

// RequiresAdmin reports whether the route or an ancestor requires the admin role.
func (m Match) RequiresAdmin() bool {
	for _, r := range m.Chain {
		if r.Meta.RequiresAdmin {
			return true
		}
	}
	return false
}

// Param returns a path parameter, or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// ParamInt returns a path parameter parsed as an integer.
func (m Match) ParamInt(name string) (int64, error) {
	return strconv.ParseInt(m.Params[name], 10, 64)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// match tries routes against segs, returning the chain for the first
// route whose full pattern consumes every segment.
func match(routes []Route, segs []string, parents []Route, params map[string]string) ([]Route, map[string]string, bool) {
	for _, r := range routes {
		pattern := splitPath(r.Path)
		if len(pattern) > len(segs) {
			continue
		}
		bound, ok := bind(pattern, segs[:len(pattern)], params)
		if !ok {
			continue
		}
		chain := append(append([]Route(nil), parents...), r)
		rest := segs[len(pattern):]
		if len(rest) == 0 {
			return chain, bound, true
		}
		if got, gotParams, ok := match(r.Children, rest, chain, bound); ok {
			return got, gotParams, true
		}
	}
	return nil, nil, false
}

func bind(pattern, segs []string, params map[string]string) (map[string]string, bool) {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, false
			}
			out[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return out, true
}
