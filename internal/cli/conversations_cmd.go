// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations_cmd.go - Local conversation management and one-shot chat
// commands.
//
// Examples:
//
//	assistchat conversations new --assistant 3
//	assistchat conversations list
//	assistchat conversations use c-42 --assistant 3
//	assistchat history --assistant 3
//	assistchat send --assistant 3 "What can you do?"
//	assistchat upload --assistant 3 ./notes.pdf

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/assistchat/internal/model"
	"github.com/jeranaias/assistchat/internal/router"
	"github.com/jeranaias/assistchat/internal/util"
)

const (
	conversationsUsage = "assistchat conversations [list | new | use <id> | delete <id>] [--assistant N]"
	historyUsage       = "assistchat history --assistant N [--conversation ID] [--local]"
	sendUsage          = "assistchat send --assistant N [--conversation ID] <text>"
	uploadUsage        = "assistchat upload --assistant N [--conversation ID] <file>"
)

// HandleConversations handles "conversations".
func HandleConversations(e *Env) error {
	p := NewArgParser(e.Args.Raw)

	switch p.Subcommand() {
	case "", "list", "ls":
		return e.listConversations(p)
	case "new", "create":
		return e.newConversation(p)
	case "use", "select":
		return e.useConversation(p)
	case "delete", "rm":
		return e.deleteConversation(p)
	default:
		return &UsageError{Message: fmt.Sprintf("unknown subcommand %q", p.Subcommand()), Usage: conversationsUsage}
	}
}

func (e *Env) listConversations(p *ArgParser) error {
	var assistants []int64
	if p.FlagAny("assistant", "a") != "" {
		id, err := p.FlagInt64("assistant", "a")
		if err != nil {
			return err
		}
		if _, err := e.enter(router.ChatPath(id)); err != nil {
			return err
		}
		assistants = []int64{id}
	} else {
		if _, err := e.enter(router.PathAssistants); err != nil {
			return err
		}
		assistants = e.App.Chats.Assistants()
	}

	current := e.App.Chats.Current()
	rows := []ConversationSummary{}
	for _, aid := range assistants {
		for _, c := range e.App.Chats.ConversationsByAssistant(aid) {
			rows = append(rows, ConversationSummary{
				ID:            c.ID,
				AssistantID:   aid,
				AssistantName: c.AssistantName,
				Title:         c.Title(),
				Messages:      len(c.Messages),
				Current:       current.AssistantID == aid && current.ConversationID == c.ID,
			})
		}
	}

	return e.emit(rows, func(w io.Writer) {
		if len(rows) == 0 {
			fmt.Fprintln(w, DimStyle.Render("No conversations yet. Start one with 'assistchat conversations new --assistant N'."))
			return
		}
		fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("  %-20s %-18s %-5s %s", "ID", "ASSISTANT", "MSGS", "TITLE")))
		for _, r := range rows {
			line := fmt.Sprintf("%s %s %-5d %s",
				util.PadWidth(r.ID, 20),
				util.PadWidth(fmt.Sprintf("%s (%d)", r.AssistantName, r.AssistantID), 18),
				r.Messages,
				util.Preview(r.Title, 40))
			if r.Current {
				fmt.Fprintln(w, HighlightStyle.Render("* "+line))
			} else {
				fmt.Fprintln(w, "  "+line)
			}
		}
	})
}

func (e *Env) newConversation(p *ArgParser) error {
	aid, err := e.assistantID(p, conversationsUsage)
	if err != nil {
		return err
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}

	conv, err := e.startConversation(aid, p.Flag("name"))
	if err != nil {
		return err
	}
	return e.emit(conversationData(conv), func(w io.Writer) {
		fmt.Fprintf(w, "%s Started conversation %s\n", SuccessStyle.Render("OK"), conv.ID)
		if len(conv.Messages) > 0 {
			fmt.Fprintln(w)
			e.writeRecords(w, conv.Messages)
		}
	})
}

// startConversation creates a conversation, naming it after the assistant
// when no name is given.
func (e *Env) startConversation(aid int64, name string) (*model.Conversation, error) {
	if name == "" {
		name = e.assistantName(aid)
	}
	return e.App.Chats.CreateConversation(e.Context(), aid, name, "", nil)
}

// assistantName looks up an assistant's display name. Failure is not fatal.
func (e *Env) assistantName(aid int64) string {
	a, err := e.App.API.GetAssistant(e.Context(), aid)
	if err != nil {
		e.App.Logger.Debug("assistant lookup failed", "assistant_id", aid, "err", err)
		return ""
	}
	return a.Name
}

func (e *Env) useConversation(p *ArgParser) error {
	aid, err := e.assistantID(p, conversationsUsage)
	if err != nil {
		return err
	}
	cid := p.Positional(1)
	if cid == "" {
		return missingArg("conversation id", conversationsUsage)
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}
	conv, ok := e.App.Chats.Conversation(aid, cid)
	if !ok {
		return &NotFoundError{Resource: "conversation", ID: cid}
	}

	e.App.Chats.SetCurrent(cid, aid)
	return e.emit(conversationData(conv), func(w io.Writer) {
		fmt.Fprintf(w, "Current conversation: %s (%s)\n", cid, util.Preview(conv.Title(), 40))
	})
}

func (e *Env) deleteConversation(p *ArgParser) error {
	aid, err := e.assistantID(p, conversationsUsage)
	if err != nil {
		return err
	}
	cid := p.Positional(1)
	if cid == "" {
		return missingArg("conversation id", conversationsUsage)
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}
	if _, ok := e.App.Chats.Conversation(aid, cid); !ok {
		return &NotFoundError{Resource: "conversation", ID: cid}
	}

	if err := e.App.Chats.DeleteConversation(e.Context(), cid, aid); err != nil {
		return err
	}
	sel := e.App.Chats.Current()
	return e.emit(map[string]any{"deleted": cid, "current": sel.ConversationID}, func(w io.Writer) {
		fmt.Fprintf(w, "%s Deleted conversation %s\n", SuccessStyle.Render("OK"), cid)
		if sel.ConversationID != "" {
			fmt.Fprintln(w, DimStyle.Render("Current conversation is now "+sel.ConversationID))
		}
	})
}

// =============================================================================
// HISTORY / SEND / UPLOAD
// =============================================================================

// resolveConversation picks the conversation a command acts on: the
// explicit id, else the current one for aid. With create set a new
// conversation is started when there is none.
func (e *Env) resolveConversation(aid int64, explicit string, create bool) (string, error) {
	if explicit != "" {
		if _, ok := e.App.Chats.Conversation(aid, explicit); !ok {
			return "", &NotFoundError{Resource: "conversation", ID: explicit}
		}
		e.App.Chats.SetCurrent(explicit, aid)
		return explicit, nil
	}
	if sel := e.App.Chats.Current(); sel.AssistantID == aid && sel.ConversationID != "" {
		return sel.ConversationID, nil
	}
	if list := e.App.Chats.ConversationsByAssistant(aid); len(list) > 0 {
		e.App.Chats.SetCurrent(list[0].ID, aid)
		return list[0].ID, nil
	}
	if !create {
		return "", &NotFoundError{Resource: "conversation", ID: fmt.Sprintf("for assistant %d", aid)}
	}
	conv, err := e.startConversation(aid, "")
	if err != nil {
		return "", err
	}
	e.notice("Started conversation %s", conv.ID)
	return conv.ID, nil
}

// HandleHistory handles "history".
func HandleHistory(e *Env) error {
	p := NewArgParser(e.Args.Raw, "local")
	aid, err := e.assistantID(p, historyUsage)
	if err != nil {
		return err
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}
	explicit := p.FlagAny("conversation", "c")
	local := p.BoolFlag("local")
	imported := false
	if explicit != "" && !local {
		if _, ok := e.App.Chats.Conversation(aid, explicit); !ok {
			if err := e.importConversation(aid, explicit); err != nil {
				return err
			}
			imported = true
		}
	}
	cid, err := e.resolveConversation(aid, explicit, false)
	if err != nil {
		return err
	}

	if !local && !imported {
		if err := e.App.Chats.HydrateHistory(e.Context(), aid, cid); err != nil {
			return err
		}
	}

	conv, ok := e.App.Chats.Conversation(aid, cid)
	if !ok {
		return &NotFoundError{Resource: "conversation", ID: cid}
	}
	return e.emit(conversationData(conv), func(w io.Writer) {
		if len(conv.Messages) == 0 {
			fmt.Fprintln(w, DimStyle.Render("No messages."))
			return
		}
		e.writeRecords(w, conv.Messages)
	})
}

// importConversation restores a conversation that exists on the backend
// but not locally, seeded with its full history.
func (e *Env) importConversation(aid int64, cid string) error {
	records, err := e.App.API.History(e.Context(), aid, cid)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return &NotFoundError{Resource: "conversation", ID: cid}
	}
	if _, err := e.App.Chats.CreateConversation(e.Context(), aid, e.assistantName(aid), cid, records); err != nil {
		return err
	}
	e.notice("Imported conversation %s (%d messages)", cid, len(records))
	return nil
}

// HandleSend handles "send".
func HandleSend(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	aid, err := e.assistantID(p, sendUsage)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(p.PositionalFrom(0), " "))
	if text == "" {
		return missingArg("message text", sendUsage)
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}
	cid, err := e.resolveConversation(aid, p.FlagAny("conversation", "c"), true)
	if err != nil {
		return err
	}

	reply, err := e.App.Chats.SendMessage(e.Context(), aid, cid, text)
	if err != nil {
		return err
	}
	return e.emit(SendData{ConversationID: cid, Reply: reply}, func(w io.Writer) {
		e.writeRecord(w, reply)
	})
}

// HandleUpload handles "upload".
func HandleUpload(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	aid, err := e.assistantID(p, uploadUsage)
	if err != nil {
		return err
	}
	path := p.Positional(0)
	if path == "" {
		return missingArg("file", uploadUsage)
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}
	cid, err := e.resolveConversation(aid, p.FlagAny("conversation", "c"), true)
	if err != nil {
		return err
	}

	msg, err := e.uploadFile(aid, cid, path)
	if err != nil {
		return err
	}
	return e.emit(SendData{ConversationID: cid, Reply: msg}, func(w io.Writer) {
		fmt.Fprintf(w, "%s Uploaded %s\n", SuccessStyle.Render("OK"), filepath.Base(path))
	})
}

func (e *Env) uploadFile(aid int64, cid, path string) (model.ChatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ChatRecord{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return e.App.Chats.UploadAttachment(e.Context(), aid, cid, filepath.Base(path), f)
}

func conversationData(c *model.Conversation) ConversationData {
	return ConversationData{ID: c.ID, AssistantID: c.AssistantID, Messages: c.Messages}
}
