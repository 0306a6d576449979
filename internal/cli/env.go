// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Command execution environment and dispatch.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/assistchat/internal/app"
	"github.com/jeranaias/assistchat/internal/config"
	"github.com/jeranaias/assistchat/internal/router"
)

// IO bundles the streams a command talks to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive enables terminal line editing and hidden password input.
	Interactive bool
	// Styled enables markdown rendering of replies.
	Styled bool
}

// StdIO returns the process streams.
func StdIO() IO {
	return IO{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: IsTTY() && IsStdoutTTY(),
		Styled:      IsStdoutTTY(),
	}
}

// Env is what every command handler receives.
type Env struct {
	IO
	Args Args
	App  *app.App

	ctx      context.Context
	prompt   *prompter
	renderer *markdown
}

// Execute runs cmd and returns the process exit code. Errors are displayed
// here, once.
func Execute(ctx context.Context, cmd Command, args Args, stdio IO) int {
	err := execute(ctx, cmd, args, stdio)
	if err == nil {
		return ExitSuccess
	}
	name := cmd.String()
	if cmd == CmdUnknown {
		name = args.Name
	}
	if args.JSON {
		DisplayError(stdio.Out, name, err, true)
	} else {
		DisplayError(stdio.Err, name, err, false)
	}
	return GetExitCode(err)
}

func execute(ctx context.Context, cmd Command, args Args, stdio IO) error {
	switch cmd {
	case CmdHelp:
		PrintUsage(stdio.Out)
		return nil
	case CmdVersion:
		return handleVersion(args, stdio.Out)
	case CmdUnknown:
		return &UsageError{Message: fmt.Sprintf("unknown command %q", args.Name), Usage: "assistchat help"}
	}

	cfg, err := loadConfig(args, stdio.Err)
	if err != nil {
		return err
	}

	env := &Env{
		IO:     stdio,
		Args:   args,
		ctx:    ctx,
		prompt: newPrompter(stdio.In, stdio.Err, stdio.Interactive),
	}

	// config works on the file alone and must stay usable when storage or
	// the backend are broken.
	if cmd == CmdConfig {
		return HandleConfig(env, cfg)
	}

	a, err := app.New(cfg, app.Options{Logger: newLogger(args, cfg, stdio.Err)})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.Logger.Warn("failed to close local storage", "err", cerr)
		}
	}()
	env.App = a
	env.renderer = newMarkdown(cfg.UI, stdio.Styled)

	switch cmd {
	case CmdLogin:
		return HandleLogin(env)
	case CmdLogout:
		return HandleLogout(env)
	case CmdRegister:
		return HandleRegister(env)
	case CmdForgotPassword:
		return HandleForgotPassword(env)
	case CmdResetPassword:
		return HandleResetPassword(env)
	case CmdAssistants:
		return HandleAssistants(env)
	case CmdConversations:
		return HandleConversations(env)
	case CmdHistory:
		return HandleHistory(env)
	case CmdSend:
		return HandleSend(env)
	case CmdUpload:
		return HandleUpload(env)
	case CmdExport:
		return HandleExport(env)
	case CmdChat:
		return HandleChat(env)
	case CmdAdmin:
		return HandleAdmin(env)
	case CmdStatus:
		return HandleStatus(env)
	}
	return &UsageError{Message: fmt.Sprintf("unknown command %q", args.Name)}
}

// loadConfig resolves the configuration for one run. A broken config file
// falls back to defaults with a warning.
func loadConfig(args Args, errOut io.Writer) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if cfg == nil {
			return nil, err
		}
		if !args.Quiet {
			fmt.Fprintf(errOut, "%s %v (using defaults)\n", WarningStyle.Render("Warning:"), err)
		}
	}

	if args.APIURL != "" {
		cfg.API.BaseURL = strings.TrimRight(args.APIURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --api: %w", err)
		}
	}
	return cfg, nil
}

func newLogger(args Args, cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.Logging.Level
	switch {
	case args.Verbose:
		level = "debug"
	case args.Quiet:
		level = "error"
	}
	return app.NewLogger(w, level)
}

// =============================================================================
// ENV HELPERS
// =============================================================================

// Context returns the command's context.
func (e *Env) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// enter navigates to path through the route guard. A redirect means the
// current session may not use the command.
func (e *Env) enter(path string) (router.Match, error) {
	m, err := e.App.Navigate(path)
	if err != nil {
		return m, err
	}
	if m.Path != path {
		return m, &AccessError{Path: path, Redirect: m.Path}
	}
	return m, nil
}

// emit prints data as JSON in --json mode and calls human otherwise.
func (e *Env) emit(data any, human func(w io.Writer)) error {
	if e.Args.JSON {
		return NewJSONResponse(e.commandName(), data).Print(e.Out)
	}
	human(e.Out)
	return nil
}

// notice prints a human-oriented message to stderr unless quiet.
func (e *Env) notice(format string, a ...any) {
	if e.Args.Quiet {
		return
	}
	fmt.Fprintf(e.Err, format+"\n", a...)
}

func (e *Env) commandName() string {
	cmd, _ := Parse([]string{e.Args.Name})
	if cmd == CmdUnknown {
		return e.Args.Name
	}
	return cmd.String()
}

// assistantID reads --assistant, falling back to the current selection.
func (e *Env) assistantID(p *ArgParser, usage string) (int64, error) {
	if p.FlagAny("assistant", "a") != "" {
		return p.FlagInt64("assistant", "a")
	}
	if sel := e.App.Chats.Current(); sel.AssistantID != 0 {
		return sel.AssistantID, nil
	}
	return 0, missingArg("--assistant", usage)
}

// =============================================================================
// VERSION
// =============================================================================

func handleVersion(args Args, w io.Writer) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	PrintVersion(w)
	return nil
}

// isAccessRedirect reports whether err is a guard redirect to target.
func isAccessRedirect(err error, target string) bool {
	var accessErr *AccessError
	return errors.As(err, &accessErr) && accessErr.Redirect == target
}
