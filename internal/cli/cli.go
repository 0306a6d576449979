// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and top-level help for assistchat.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdLogin
	CmdLogout
	CmdRegister
	CmdForgotPassword
	CmdResetPassword
	CmdAssistants
	CmdConversations
	CmdHistory
	CmdSend
	CmdUpload
	CmdExport
	CmdChat
	CmdAdmin
	CmdStatus
	CmdConfig
	CmdVersion
	CmdUnknown
)

// commandNames is used for JSON output and error messages.
var commandNames = map[Command]string{
	CmdHelp:           "help",
	CmdLogin:          "login",
	CmdLogout:         "logout",
	CmdRegister:       "register",
	CmdForgotPassword: "forgot-password",
	CmdResetPassword:  "reset-password",
	CmdAssistants:     "assistants",
	CmdConversations:  "conversations",
	CmdHistory:        "history",
	CmdSend:           "send",
	CmdUpload:         "upload",
	CmdExport:         "export",
	CmdChat:           "chat",
	CmdAdmin:          "admin",
	CmdStatus:         "status",
	CmdConfig:         "config",
	CmdVersion:        "version",
	CmdUnknown:        "unknown",
}

// String returns the command's name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool
	Quiet      bool
	Verbose    bool
	ConfigPath string // --config
	APIURL     string // --api

	// Name is the word the user typed for the command.
	Name string

	// Raw holds the arguments after the command name, global flags removed.
	Raw []string
}

const usageText = `assistchat - terminal client for the assistant chat service

Usage:
  assistchat <command> [arguments] [flags]

Account:
  login [account]              Log in (prompts for the password)
    --password P               Password for non-interactive use
  logout                       Log out, remembering the account name
    --forget                   Forget the account name too
  register <username>          Create an account
    --password P --email E --phone N
  forgot-password <account>    Request a password reset code
  reset-password <account>     Set a new password with a reset code
    --code C --new-password P

Chat:
  assistants                   List assistants
  assistants show <id>         Show one assistant
  conversations list           List local conversations (--assistant N)
  conversations new            Start a conversation (--assistant N)
  conversations use <id>       Make a conversation current (--assistant N)
  conversations delete <id>    Delete a conversation (--assistant N)
  history                      Show and refresh a conversation's messages
    --assistant N [--conversation ID]
  send "text"                  Send a message (--assistant N)
  upload <file>                Upload an attachment (--assistant N)
  export                       Save a conversation to a file (--assistant N)
    --format markdown|html|json  [--output DIR] [--stdout] [--refresh]
  chat                         Interactive chat (--assistant N)

Administration (admin role):
  admin assistants [list|create|update|delete|prompt|params|bind]
  admin docs [list|upload|parse|update|delete]
  admin users [list|create|update|delete|reset-password]

Other:
  status                       Show backend, session and storage status
  config [show|get|set|path]   Show or change configuration
  version                      Show version information
  help                         Show this help

Global flags:
  --json                       Machine-readable output
  -v, --verbose                Debug logging on stderr
  -q, --quiet                  Errors only
  --config PATH                Use a specific config file
  --api URL                    Override the backend base URL

Environment:
  ASSISTCHAT_API_URL, ASSISTCHAT_TIMEOUT, ASSISTCHAT_STORAGE,
  ASSISTCHAT_DATA_DIR, ASSISTCHAT_LOG_LEVEL, NO_COLOR
`

// PrintUsage writes the top-level help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "assistchat %s\n", Version)
	fmt.Fprintf(w, "  Commit:     %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command line arguments (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdHelp, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]

	switch strings.ToLower(args.Name) {
	case "login":
		return CmdLogin, args
	case "logout":
		return CmdLogout, args
	case "register", "signup":
		return CmdRegister, args
	case "forgot-password":
		return CmdForgotPassword, args
	case "reset-password":
		return CmdResetPassword, args
	case "assistants", "a":
		return CmdAssistants, args
	case "conversations", "conv", "c":
		return CmdConversations, args
	case "history":
		return CmdHistory, args
	case "send":
		return CmdSend, args
	case "upload":
		return CmdUpload, args
	case "export":
		return CmdExport, args
	case "chat":
		return CmdChat, args
	case "admin":
		return CmdAdmin, args
	case "status", "s":
		return CmdStatus, args
	case "config":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the command line.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch arg {
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--config", "--api":
			if i+1 < len(argv) {
				i++
				if arg == "--config" {
					args.ConfigPath = argv[i]
				} else {
					args.APIURL = argv[i]
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--config="):
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--api="):
				args.APIURL = strings.TrimPrefix(arg, "--api=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, args
}
