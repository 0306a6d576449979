// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Rendering of chat records for the terminal.

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/assistchat/internal/config"
	"github.com/jeranaias/assistchat/internal/model"
)

// markdown renders assistant replies. It degrades to plain text when
// output is not a terminal or the renderer cannot be built.
type markdown struct {
	enabled bool
	theme   string
	wrap    int

	once     sync.Once
	renderer *glamour.TermRenderer
}

func newMarkdown(ui config.UIConfig, styled bool) *markdown {
	return &markdown{
		enabled: styled && ui.Markdown && ui.Theme != "notty",
		theme:   ui.Theme,
		wrap:    ui.WordWrap,
	}
}

// Render returns content formatted for display.
func (m *markdown) Render(content string) string {
	if m == nil || !m.enabled {
		return content
	}
	m.once.Do(func() {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(m.wrap)}
		switch m.theme {
		case "dark", "light":
			opts = append(opts, glamour.WithStandardStyle(m.theme))
		default:
			opts = append(opts, glamour.WithAutoStyle())
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err == nil {
			m.renderer = r
		}
	})
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

var titleCaser = cases.Title(language.English)

// roleLabel returns the display name of a role ("Admin", "User").
func roleLabel(role string) string {
	if role == "" {
		return "-"
	}
	return titleCaser.String(role)
}

// writeRecord prints one chat record.
func (e *Env) writeRecord(w io.Writer, rec model.ChatRecord) {
	switch {
	case rec.IsOpening():
		fmt.Fprintln(w, openingStyle.Render(e.renderer.Render(rec.Content)))
	case rec.MessageType == model.MessageAttachment:
		names := make([]string, 0, len(rec.Attachments))
		for _, a := range rec.Attachments {
			names = append(names, a.Filename)
		}
		label := strings.Join(names, ", ")
		if label == "" {
			label = rec.Content
		}
		fmt.Fprintf(w, "%s %s\n", userLabelStyle.Render(rec.Role.DisplayName()+":"),
			attachmentStyle.Render("[attachment] "+label))
	case rec.Role == model.RoleUser:
		fmt.Fprintf(w, "%s %s\n", userLabelStyle.Render(rec.Role.DisplayName()+":"), rec.Content)
	default:
		label := titleCaser.String(rec.Role.DisplayName())
		if rec.HideName {
			fmt.Fprintln(w, e.renderer.Render(rec.Content))
			return
		}
		fmt.Fprintf(w, "%s\n%s\n", assistantLabelStyle.Render(label+":"), e.renderer.Render(rec.Content))
	}
}

// writeRecords prints a message log separated by blank lines.
func (e *Env) writeRecords(w io.Writer, records []model.ChatRecord) {
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		e.writeRecord(w, rec)
	}
}
