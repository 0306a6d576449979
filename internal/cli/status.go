// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command: backend reachability, session and local
// storage at a glance.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/assistchat/internal/api"
)

// statusProbeTimeout bounds the backend probe.
const statusProbeTimeout = 5 * time.Second

// HandleStatus handles "status". It never fails because the backend is
// down; that is what it reports.
func HandleStatus(e *Env) error {
	var data StatusData
	data.Session = e.sessionData()

	g, ctx := errgroup.WithContext(e.Context())
	g.Go(func() error {
		data.Backend = e.probeBackend(ctx)
		return nil
	})
	g.Go(func() error {
		info, err := e.storageInfo()
		data.Storage = info
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return e.emit(data, func(w io.Writer) { writeStatus(w, data) })
}

// probeBackend lists assistants. Any HTTP answer, including 401, proves the
// backend reachable.
func (e *Env) probeBackend(ctx context.Context) StatusBackendInfo {
	info := StatusBackendInfo{URL: e.App.API.BaseURL()}
	ctx, cancel := context.WithTimeout(ctx, statusProbeTimeout)
	defer cancel()

	start := time.Now()
	list, err := e.App.API.ListAssistants(ctx)
	info.LatencyMs = time.Since(start).Milliseconds()

	var apiErr *api.APIError
	switch {
	case err == nil:
		info.Reachable = true
		info.Assistants = len(list)
	case errors.As(err, &apiErr):
		info.Reachable = apiErr.Status < http.StatusInternalServerError
		info.Error = api.Message(err)
	default:
		info.Error = err.Error()
	}
	return info
}

func (e *Env) storageInfo() (StatusStorageInfo, error) {
	cfg := e.App.Config
	info := StatusStorageInfo{Backend: cfg.Storage.Backend}
	if dir, err := cfg.ResolveDataDir(); err == nil {
		info.DataDir = dir
	}

	for _, aid := range e.App.Chats.Assistants() {
		info.Assistants++
		info.Conversations += len(e.App.Chats.ConversationsByAssistant(aid))
	}
	if sel := e.App.Chats.Current(); sel.ConversationID != "" {
		info.Current = fmt.Sprintf("%s (assistant %d)", sel.ConversationID, sel.AssistantID)
	}
	return info, nil
}

func writeStatus(w io.Writer, data StatusData) {
	fmt.Fprintln(w, TitleStyle.Render("assistchat status"))
	fmt.Fprintln(w, RenderSeparator(40))

	b := data.Backend
	if b.Reachable {
		detail := fmt.Sprintf("%s (%dms)", b.URL, b.LatencyMs)
		if b.Assistants > 0 {
			detail += fmt.Sprintf(", %d assistants", b.Assistants)
		}
		fmt.Fprintf(w, "%s%s %s\n", RenderLabel("Backend"), RenderStatus("ok"), detail)
	} else {
		fmt.Fprintf(w, "%s%s %s\n", RenderLabel("Backend"), RenderStatus("fail"), b.URL)
	}
	if b.Error != "" {
		fmt.Fprintf(w, "%s%s\n", RenderLabel(""), DimStyle.Render(b.Error))
	}

	s := data.Session
	if s.LoggedIn {
		fmt.Fprintf(w, "%s%s %s (%s)\n", RenderLabel("Session"), RenderStatus("ok"), s.Account, roleLabel(s.Role))
	} else {
		fmt.Fprintf(w, "%s%s not logged in\n", RenderLabel("Session"), RenderStatus("warn"))
	}

	st := data.Storage
	fmt.Fprintf(w, "%s%s %s\n", RenderLabel("Storage"), st.Backend, DimStyle.Render(st.DataDir))
	fmt.Fprintf(w, "%s%d across %d assistants\n", RenderLabel("Conversations"), st.Conversations, st.Assistants)
	if st.Current != "" {
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Current"), st.Current)
	}
}
