// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export command handler.
//
// Command: export
// Short:   Save a conversation as Markdown, HTML or JSON
//
// Examples:
//
//	assistchat export --assistant 3
//	assistchat export --assistant 3 --conversation c-42 --format html --output ./exports
//	assistchat export --assistant 3 --format json --stdout > chat.json

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/assistchat/internal/export"
	"github.com/jeranaias/assistchat/internal/router"
)

const exportUsage = "assistchat export --assistant N [--conversation ID] [--format markdown|html|json] [--output DIR] [--stdout] [--refresh] [--open]"

// ExportData is the result of "export".
type ExportData struct {
	ConversationID string `json:"conversation_id"`
	Format         string `json:"format"`
	Path           string `json:"path"`
	Messages       int    `json:"messages"`
}

// HandleExport handles "export".
func HandleExport(e *Env) error {
	p := NewArgParser(e.Args.Raw, "stdout", "refresh", "open")
	aid, err := e.assistantID(p, exportUsage)
	if err != nil {
		return err
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}

	format := strings.ToLower(p.FlagAny("format", "f"))
	opts := export.DefaultOptions()
	opts.OutputDir = p.FlagOrDefault("output", p.FlagOrDefault("o", "."))
	opts.OpenAfterExport = p.BoolFlag("open")
	if e.App.Config.UI.Theme == "light" {
		opts.Theme = "light"
	}
	exporter, err := export.New(format, opts)
	if err != nil {
		return &UsageError{Message: err.Error(), Usage: "formats: " + strings.Join(export.Formats(), ", ")}
	}

	cid, err := e.resolveConversation(aid, p.FlagAny("conversation", "c"), false)
	if err != nil {
		return err
	}
	if p.BoolFlag("refresh") {
		if err := e.App.Chats.HydrateHistory(e.Context(), aid, cid); err != nil {
			return err
		}
	}
	conv, ok := e.App.Chats.Conversation(aid, cid)
	if !ok {
		return &NotFoundError{Resource: "conversation", ID: cid}
	}

	if p.BoolFlag("stdout") {
		content, err := exporter.Export(conv)
		if err != nil {
			return fmt.Errorf("export %s: %w", cid, err)
		}
		_, err = e.Out.Write(content)
		return err
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return err
	}
	data := ExportData{
		ConversationID: cid,
		Format:         strings.TrimPrefix(exporter.FileExtension(), "."),
		Path:           path,
		Messages:       len(conv.Messages),
	}
	return e.emit(data, func(w io.Writer) {
		fmt.Fprintf(w, "%s Exported %s (%d messages) to %s\n", SuccessStyle.Render("OK"), cid, data.Messages, path)
	})
}
