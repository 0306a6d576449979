// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// assistants_cmd.go - Browse the assistants offered by the backend.
//
// Examples:
//
//	assistchat assistants
//	assistchat assistants show 3

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jeranaias/assistchat/internal/model"
	"github.com/jeranaias/assistchat/internal/router"
	"github.com/jeranaias/assistchat/internal/util"
)

const assistantsUsage = "assistchat assistants [list | show <id>]"

// HandleAssistants handles "assistants".
func HandleAssistants(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	if _, err := e.enter(router.PathAssistants); err != nil {
		return err
	}

	switch p.Subcommand() {
	case "", "list", "ls":
		return e.listAssistants()
	case "show", "get":
		id, err := ParseID(p.Positional(1), "assistant id")
		if err != nil {
			return err
		}
		return e.showAssistant(id)
	default:
		return &UsageError{Message: fmt.Sprintf("unknown subcommand %q", p.Subcommand()), Usage: assistantsUsage}
	}
}

func (e *Env) listAssistants() error {
	list, err := e.App.API.ListAssistants(e.Context())
	if err != nil {
		return err
	}
	return e.emit(list, func(w io.Writer) {
		writeAssistantTable(w, list)
	})
}

func writeAssistantTable(w io.Writer, list []model.Assistant) {
	if len(list) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No assistants available."))
		return
	}
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%-6s %-24s %s", "ID", "NAME", "DESCRIPTION")))
	for _, a := range list {
		fmt.Fprintf(w, "%-6d %s %s\n", a.ID, util.PadWidth(a.Name, 24), util.Preview(a.Description, 48))
	}
}

func (e *Env) showAssistant(id int64) error {
	a, err := e.App.API.GetAssistant(e.Context(), id)
	if err != nil {
		return err
	}
	return e.emit(a, func(w io.Writer) {
		fmt.Fprintln(w, TitleStyle.Render(a.Name))
		fmt.Fprintf(w, "%s%d\n", RenderLabel("ID"), a.ID)
		if a.Description != "" {
			fmt.Fprintf(w, "%s%s\n", RenderLabel("Description"), a.Description)
		}
		if len(a.KnowledgeIDs) > 0 {
			fmt.Fprintf(w, "%s%s\n", RenderLabel("Knowledge"), joinIDs(a.KnowledgeIDs))
		}
		if a.UpdateTime != "" {
			fmt.Fprintf(w, "%s%s\n", RenderLabel("Updated"), a.UpdateTime)
		}
		if a.OpeningMessage != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, openingStyle.Render(e.renderer.Render(a.OpeningMessage)))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, DimStyle.Render("Start chatting: assistchat chat --assistant "+strconv.FormatInt(a.ID, 10)))
	})
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
