// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler.
//
// Command: chat
// Short:   Start an interactive chat with an assistant
//
// Examples:
//
//	assistchat chat --assistant 3
//	assistchat chat --assistant 3 --conversation c-42
//
// Interactive Commands (during chat):
//
//	/help, /h           Show available commands
//	/new                Start a new conversation
//	/list               List conversations with this assistant
//	/use <id>           Switch conversation
//	/delete [id]        Delete a conversation (default: current)
//	/history            Reload the conversation from the backend
//	/upload <path>      Upload a file into the conversation
//	/quit, /q           Exit chat
//	Ctrl+D              Exit chat
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/assistchat/internal/config"
	"github.com/jeranaias/assistchat/internal/router"
	"github.com/jeranaias/assistchat/internal/util"
)

const chatUsage = "assistchat chat --assistant N [--conversation ID]"

// errQuit ends the REPL.
var errQuit = errors.New("quit")

// =============================================================================
// INPUT
// =============================================================================

// lineReader is the REPL's input source.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close()
}

// linerInput provides line editing and persistent history on a terminal.
type linerInput struct {
	line        *liner.State
	historyFile string
}

func newLinerInput() *linerInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &linerInput{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (l *linerInput) ReadLine(prompt string) (string, error) {
	input, err := l.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		l.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (l *linerInput) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			l.line.WriteHistory(f)
			f.Close()
		}
	}
	l.line.Close()
}

// scannerInput reads piped input line by line without prompting.
type scannerInput struct {
	scanner *bufio.Scanner
}

func (s *scannerInput) ReadLine(string) (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *scannerInput) Close() {}

// =============================================================================
// SESSION
// =============================================================================

// chatSession is the state of one REPL run.
type chatSession struct {
	env         *Env
	assistantID int64
	name        string
	out         io.Writer
}

// HandleChat handles "chat".
func HandleChat(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	aid, err := e.assistantID(p, chatUsage)
	if err != nil {
		return err
	}
	if _, err := e.enter(router.ChatPath(aid)); err != nil {
		return err
	}
	if e.Args.JSON {
		return &UsageError{Message: "chat is interactive and does not support --json", Usage: "assistchat send --json ..."}
	}

	s := &chatSession{env: e, assistantID: aid, name: e.assistantName(aid), out: e.Out}
	cid, err := e.resolveConversation(aid, p.FlagAny("conversation", "c"), true)
	if err != nil {
		return err
	}

	var input lineReader
	if e.Interactive {
		input = newLinerInput()
	} else {
		input = &scannerInput{scanner: bufio.NewScanner(e.In)}
	}
	defer input.Close()

	s.printWelcome(cid)

	for {
		line, err := input.ReadLine(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C, Ctrl+D and end of piped input all end the session.
			fmt.Fprintln(s.out)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			err = s.handleSlash(line)
		} else {
			err = s.send(line)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(e.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

func (s *chatSession) printWelcome(cid string) {
	title := s.name
	if title == "" {
		title = fmt.Sprintf("assistant %d", s.assistantID)
	}
	fmt.Fprintln(s.out, TitleStyle.Render("Chatting with "+title))
	fmt.Fprintln(s.out, DimStyle.Render("Conversation "+cid+". Type /help for commands, /quit to exit."))
	fmt.Fprintln(s.out)
	if msgs := s.env.App.Chats.CurrentMessages(); len(msgs) > 0 {
		s.env.writeRecords(s.out, msgs)
		fmt.Fprintln(s.out)
	}
}

// current returns the selected conversation id for this assistant.
func (s *chatSession) current() (string, error) {
	return s.env.resolveConversation(s.assistantID, "", true)
}

func (s *chatSession) send(text string) error {
	cid, err := s.current()
	if err != nil {
		return err
	}
	reply, err := s.env.App.Chats.SendMessage(s.env.Context(), s.assistantID, cid, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out)
	s.env.writeRecord(s.out, reply)
	fmt.Fprintln(s.out)
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (s *chatSession) handleSlash(line string) error {
	fields := strings.Fields(line)
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	chats := s.env.App.Chats
	ctx := s.env.Context()

	switch cmd {
	case "/quit", "/q", "/exit":
		return errQuit

	case "/help", "/h":
		s.printHelp()

	case "/new":
		conv, err := s.env.startConversation(s.assistantID, s.name)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, DimStyle.Render("Started conversation "+conv.ID))
		if len(conv.Messages) > 0 {
			s.env.writeRecords(s.out, conv.Messages)
			fmt.Fprintln(s.out)
		}

	case "/list", "/ls":
		sel := chats.Current()
		list := chats.ConversationsByAssistant(s.assistantID)
		if len(list) == 0 {
			fmt.Fprintln(s.out, DimStyle.Render("No conversations."))
		}
		for _, c := range list {
			marker := "  "
			if c.ID == sel.ConversationID {
				marker = "* "
			}
			fmt.Fprintf(s.out, "%s%s %s\n", marker, util.PadWidth(c.ID, 20), util.Preview(c.Title(), 48))
		}

	case "/use":
		if len(rest) == 0 {
			return &UsageError{Message: "conversation id is required", Usage: "/use <id>"}
		}
		cid, err := s.env.resolveConversation(s.assistantID, rest[0], false)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, DimStyle.Render("Switched to "+cid))
		s.env.writeRecords(s.out, chats.CurrentMessages())
		fmt.Fprintln(s.out)

	case "/delete", "/rm":
		cid := chats.Current().ConversationID
		if len(rest) > 0 {
			cid = rest[0]
		}
		if _, ok := chats.Conversation(s.assistantID, cid); cid == "" || !ok {
			return &NotFoundError{Resource: "conversation", ID: cid}
		}
		if err := chats.DeleteConversation(ctx, cid, s.assistantID); err != nil {
			return err
		}
		fmt.Fprintln(s.out, DimStyle.Render("Deleted "+cid))

	case "/history":
		cid, err := s.env.resolveConversation(s.assistantID, "", false)
		if err != nil {
			return err
		}
		if err := chats.HydrateHistory(ctx, s.assistantID, cid); err != nil {
			return err
		}
		s.env.writeRecords(s.out, chats.CurrentMessages())
		fmt.Fprintln(s.out)

	case "/upload":
		if len(rest) == 0 {
			return &UsageError{Message: "file path is required", Usage: "/upload <path>"}
		}
		cid, err := s.current()
		if err != nil {
			return err
		}
		path := strings.Join(rest, " ")
		if _, err := s.env.uploadFile(s.assistantID, cid, path); err != nil {
			return err
		}
		fmt.Fprintln(s.out, DimStyle.Render("Uploaded "+filepath.Base(path)))

	default:
		return &UsageError{Message: fmt.Sprintf("unknown command %s", cmd), Usage: "/help"}
	}
	return nil
}

func (s *chatSession) printHelp() {
	fmt.Fprint(s.out, `Commands:
  /new             Start a new conversation
  /list            List conversations
  /use <id>        Switch conversation
  /delete [id]     Delete a conversation
  /history         Reload messages from the server
  /upload <path>   Upload a file
  /quit            Exit
`)
}
