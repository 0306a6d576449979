// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// admin_cmd.go - Administration of assistants, knowledge documents and
// users. Every subcommand requires the admin role.
//
// Examples:
//
//	assistchat admin assistants list
//	assistchat admin assistants create --name Helper --prompt "Be brief."
//	assistchat admin assistants params 3 temperature=0.2 max_tokens=512
//	assistchat admin assistants bind 3 10,11
//	assistchat admin docs upload ./handbook.pdf
//	assistchat admin docs parse 10
//	assistchat admin users create carol --password pw --role admin
//	assistchat admin users reset-password 7

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/model"
	"github.com/jeranaias/assistchat/internal/router"
	"github.com/jeranaias/assistchat/internal/util"
)

const (
	adminUsage           = "assistchat admin <assistants|docs|users> <action> [args]"
	adminAssistantsUsage = "assistchat admin assistants [list | create | update <id> | delete <id> | prompt <id> <text> | params <id> k=v... | bind <id> <doc-ids>]"
	adminDocsUsage       = "assistchat admin docs [list | upload <file> | parse <id> | update <id> | delete <id>]"
	adminUsersUsage      = "assistchat admin users [list | create <username> | update <id> | delete <id> | reset-password <id>]"
)

// HandleAdmin handles "admin".
func HandleAdmin(e *Env) error {
	if len(e.Args.Raw) == 0 {
		return missingArg("area", adminUsage)
	}
	area, rest := e.Args.Raw[0], e.Args.Raw[1:]

	var path string
	var handler func(*Env, *ArgParser) error
	switch area {
	case "assistants":
		path, handler = router.PathAdmin+"/assistants", adminAssistants
	case "docs", "documents":
		path, handler = router.PathAdmin+"/docs", adminDocs
	case "users":
		path, handler = router.PathAdmin+"/users", adminUsers
	default:
		return &UsageError{Message: fmt.Sprintf("unknown admin area %q", area), Usage: adminUsage}
	}

	if _, err := e.enter(path); err != nil {
		return err
	}
	return handler(e, NewArgParser(rest))
}

// =============================================================================
// ASSISTANTS
// =============================================================================

func adminAssistants(e *Env, p *ArgParser) error {
	ctx := e.Context()
	client := e.App.API

	switch p.Subcommand() {
	case "", "list", "ls":
		list, err := client.AdminListAssistants(ctx)
		if err != nil {
			return err
		}
		return e.emit(list, func(w io.Writer) { writeAssistantTable(w, list) })

	case "create":
		in := api.AssistantInput{
			Name:          p.FlagOrDefault("name", p.Positional(1)),
			Icon:          p.Flag("icon"),
			Description:   p.Flag("description"),
			PromptContent: p.Flag("prompt"),
		}
		if in.Name == "" {
			return missingArg("--name", adminAssistantsUsage)
		}
		if ids := p.Flag("knowledge"); ids != "" {
			list, err := ParseIDList(ids, "--knowledge")
			if err != nil {
				return err
			}
			in.KnowledgeIDs = list
		}
		msg, err := client.AdminCreateAssistant(ctx, in)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Created assistant "+in.Name+".")

	case "update":
		id, err := ParseID(p.Positional(1), "assistant id")
		if err != nil {
			return err
		}
		patch := api.AssistantPatch{
			Name:          optional(p, "name"),
			Icon:          optional(p, "icon"),
			Description:   optional(p, "description"),
			PromptContent: optional(p, "prompt"),
		}
		msg, err := client.AdminUpdateAssistant(ctx, id, patch)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Assistant updated.")

	case "delete", "rm":
		id, err := ParseID(p.Positional(1), "assistant id")
		if err != nil {
			return err
		}
		msg, err := client.AdminDeleteAssistant(ctx, id)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Assistant deleted.")

	case "prompt":
		id, err := ParseID(p.Positional(1), "assistant id")
		if err != nil {
			return err
		}
		prompt := strings.Join(p.PositionalFrom(2), " ")
		if file := p.Flag("file"); file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read prompt file: %w", err)
			}
			prompt = string(data)
		}
		if strings.TrimSpace(prompt) == "" {
			return missingArg("prompt text", adminAssistantsUsage)
		}
		msg, err := client.AdminUpdatePrompt(ctx, id, prompt)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Prompt updated.")

	case "params", "parameters":
		id, err := ParseID(p.Positional(1), "assistant id")
		if err != nil {
			return err
		}
		params, err := ParseParams(p.PositionalFrom(2))
		if err != nil {
			return err
		}
		if len(params) == 0 {
			return missingArg("key=value", adminAssistantsUsage)
		}
		msg, err := client.AdminUpdateParameters(ctx, id, params)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Parameters updated.")

	case "bind":
		id, err := ParseID(p.Positional(1), "assistant id")
		if err != nil {
			return err
		}
		docs, err := ParseIDList(strings.Join(p.PositionalFrom(2), ","), "document id")
		if err != nil {
			return err
		}
		msg, err := client.AdminBindKnowledge(ctx, id, docs)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Knowledge bound.")
	}
	return &UsageError{Message: fmt.Sprintf("unknown action %q", p.Subcommand()), Usage: adminAssistantsUsage}
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func adminDocs(e *Env, p *ArgParser) error {
	ctx := e.Context()
	client := e.App.API

	switch p.Subcommand() {
	case "", "list", "ls":
		docs, err := client.AdminListDocuments(ctx)
		if err != nil {
			return err
		}
		return e.emit(docs, func(w io.Writer) { writeDocumentTable(w, docs) })

	case "upload":
		path := p.Positional(1)
		if path == "" {
			return missingArg("file", adminDocsUsage)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		resp, err := client.AdminUploadDocument(ctx, filepath.Base(path), f)
		if err != nil {
			return err
		}
		return e.emit(resp.Data, func(w io.Writer) {
			fmt.Fprintf(w, "%s Uploaded %s as document %d\n", SuccessStyle.Render("OK"), filepath.Base(path), resp.Data.ID)
			fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("Parse it with: assistchat admin docs parse %d", resp.Data.ID)))
		})

	case "parse":
		id, err := ParseID(p.Positional(1), "document id")
		if err != nil {
			return err
		}
		msg, err := client.AdminParseDocument(ctx, id)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Parsing started.")

	case "update":
		id, err := ParseID(p.Positional(1), "document id")
		if err != nil {
			return err
		}
		patch := api.DocumentPatch{Name: optional(p, "name")}
		if p.Flag("assistant") != "" {
			aid, err := ParseID(p.Flag("assistant"), "--assistant")
			if err != nil {
				return err
			}
			patch.AssistantID = &aid
		}
		msg, err := client.AdminUpdateDocument(ctx, id, patch)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Document updated.")

	case "delete", "rm":
		id, err := ParseID(p.Positional(1), "document id")
		if err != nil {
			return err
		}
		msg, err := client.AdminDeleteDocument(ctx, id)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Document deleted.")
	}
	return &UsageError{Message: fmt.Sprintf("unknown action %q", p.Subcommand()), Usage: adminDocsUsage}
}

func writeDocumentTable(w io.Writer, docs []model.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No documents."))
		return
	}
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%-6s %-32s %-10s %s", "ID", "NAME", "STATUS", "ASSISTANT")))
	for _, d := range docs {
		assistant := "-"
		if d.AssistantID != nil {
			assistant = fmt.Sprint(*d.AssistantID)
		}
		fmt.Fprintf(w, "%-6d %s %-10s %s\n", d.ID, util.PadWidth(d.Name, 32), parseStatus(d.ParseStatus), assistant)
	}
}

func parseStatus(status string) string {
	switch status {
	case model.ParseStatusParsed:
		return SuccessStyle.Render(status)
	case model.ParseStatusFailed:
		return ErrorStyle.Render(status)
	case "":
		return model.ParseStatusUnparsed
	}
	return status
}

// =============================================================================
// USERS
// =============================================================================

func adminUsers(e *Env, p *ArgParser) error {
	ctx := e.Context()
	client := e.App.API

	switch p.Subcommand() {
	case "", "list", "ls":
		users, err := client.AdminListUsers(ctx)
		if err != nil {
			return err
		}
		return e.emit(users, func(w io.Writer) {
			if len(users) == 0 {
				fmt.Fprintln(w, DimStyle.Render("No users."))
				return
			}
			fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%-6s %-20s %-8s %s", "ID", "USERNAME", "ROLE", "EMAIL")))
			for _, u := range users {
				fmt.Fprintf(w, "%-6d %s %-8s %s\n", u.ID, util.PadWidth(u.Username, 20), roleLabel(u.Role), u.Email)
			}
		})

	case "create":
		in := api.UserInput{
			Username: p.FlagOrDefault("username", p.Positional(1)),
			Password: p.FlagAny("password", "p"),
			Email:    p.Flag("email"),
			Role:     strings.ToLower(p.Flag("role")),
		}
		if in.Username == "" {
			return missingArg("username", adminUsersUsage)
		}
		if err := checkRole(in.Role); err != nil {
			return err
		}
		if in.Password == "" {
			var err error
			if in.Password, err = e.prompt.Password("Password for " + in.Username + ": "); err != nil {
				return err
			}
		}
		msg, err := client.AdminCreateUser(ctx, in)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Created user "+in.Username+".")

	case "update":
		id, err := ParseID(p.Positional(1), "user id")
		if err != nil {
			return err
		}
		patch := api.UserPatch{
			Username: optional(p, "username"),
			Email:    optional(p, "email"),
			Role:     optional(p, "role"),
		}
		if patch.Role != nil {
			*patch.Role = strings.ToLower(*patch.Role)
			if err := checkRole(*patch.Role); err != nil {
				return err
			}
		}
		msg, err := client.AdminUpdateUser(ctx, id, patch)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "User updated.")

	case "delete", "rm":
		id, err := ParseID(p.Positional(1), "user id")
		if err != nil {
			return err
		}
		msg, err := client.AdminDeleteUser(ctx, id)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "User deleted.")

	case "reset-password":
		id, err := ParseID(p.Positional(1), "user id")
		if err != nil {
			return err
		}
		password := p.FlagAny("password", "p")
		if password == "" {
			if password, err = e.prompt.Password("New password: "); err != nil {
				return err
			}
		}
		msg, err := client.AdminResetUserPassword(ctx, id, password)
		if err != nil {
			return err
		}
		return e.emitMessage(msg, "Password reset.")
	}
	return &UsageError{Message: fmt.Sprintf("unknown action %q", p.Subcommand()), Usage: adminUsersUsage}
}

func checkRole(role string) error {
	switch role {
	case "", model.UserRoleAdmin, model.UserRoleUser:
		return nil
	}
	return &UsageError{Message: fmt.Sprintf("role must be %q or %q (got %q)", model.UserRoleUser, model.UserRoleAdmin, role)}
}

// =============================================================================
// HELPERS
// =============================================================================

// optional returns a pointer to the flag's value when the flag was given.
func optional(p *ArgParser, name string) *string {
	if !p.HasFlag(name) {
		return nil
	}
	v := p.Flag(name)
	return &v
}

// ParseParams parses key=value pairs. Values that are valid JSON (numbers,
// booleans, quoted strings, objects) keep their type; anything else is a
// string.
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &UsageError{Message: fmt.Sprintf("expected key=value, got %q", pair)}
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		params[key] = value
	}
	return params, nil
}
