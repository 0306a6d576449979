// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Account commands: login, logout, register and password
// recovery.
//
// Examples:
//
//	assistchat login alice
//	assistchat login alice --password secret --json
//	assistchat logout --forget
//	assistchat register bob --email bob@example.com
//	assistchat forgot-password bob
//	assistchat reset-password bob --code 123456 --new-password n3w

package cli

import (
	"fmt"
	"io"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/router"
)

const (
	loginUsage    = "assistchat login [account] [--password P]"
	registerUsage = "assistchat register <username> [--password P] [--email E] [--phone N]"
	forgotUsage   = "assistchat forgot-password <account>"
	resetUsage    = "assistchat reset-password <account> --code C [--new-password P]"
)

func (e *Env) sessionData() SessionData {
	s := e.App.Auth.Session()
	return SessionData{LoggedIn: s.Token != "", Account: s.Account, Role: s.Role}
}

// HandleLogin handles "login".
func HandleLogin(e *Env) error {
	p := NewArgParser(e.Args.Raw)

	if _, err := e.enter(router.PathLogin); err != nil {
		if isAccessRedirect(err, router.PathAssistants) {
			return e.emit(e.sessionData(), func(w io.Writer) {
				fmt.Fprintf(w, "Already logged in as %s. Run 'assistchat logout' to switch accounts.\n",
					e.App.Auth.Account())
			})
		}
		return err
	}

	account := p.FlagAny("account", "u")
	if account == "" {
		account = p.Positional(0)
	}
	if account == "" {
		account = e.App.Auth.Account()
		if account != "" {
			e.notice("Logging in as %s", account)
		}
	}
	if account == "" {
		var err error
		if account, err = e.prompt.Line("Account: "); err != nil {
			return err
		}
	}
	if account == "" {
		return missingArg("account", loginUsage)
	}

	password := p.FlagAny("password", "p")
	if password == "" {
		var err error
		if password, err = e.prompt.Password("Password: "); err != nil {
			return err
		}
	}

	if err := e.App.Auth.Login(e.Context(), e.App.API, account, password); err != nil {
		return err
	}
	if _, err := e.enter(router.PathAssistants); err != nil {
		return err
	}

	data := e.sessionData()
	return e.emit(data, func(w io.Writer) {
		fmt.Fprintf(w, "%s Logged in as %s (%s)\n", SuccessStyle.Render("OK"), data.Account, roleLabel(data.Role))
	})
}

// HandleLogout handles "logout".
func HandleLogout(e *Env) error {
	p := NewArgParser(e.Args.Raw, "forget")
	forget := p.BoolFlag("forget")

	wasLoggedIn := e.App.Auth.IsLoggedIn()
	if _, err := e.App.Logout(forget); err != nil {
		return err
	}

	data := e.sessionData()
	return e.emit(data, func(w io.Writer) {
		if !wasLoggedIn {
			fmt.Fprintln(w, "Not logged in.")
		} else {
			fmt.Fprintln(w, "Logged out.")
		}
		if data.Account != "" {
			fmt.Fprintln(w, DimStyle.Render("Account "+data.Account+" will be suggested at next login."))
		}
	})
}

// HandleRegister handles "register".
func HandleRegister(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	if _, err := e.enter(router.PathRegister); err != nil {
		return err
	}

	data := api.RegisterData{
		Username: p.FlagOrDefault("username", p.Positional(0)),
		Password: p.FlagAny("password", "p"),
		Email:    p.Flag("email"),
		Phone:    p.Flag("phone"),
	}
	if data.Username == "" {
		return missingArg("username", registerUsage)
	}
	if data.Password == "" {
		var err error
		if data.Password, err = e.prompt.Password("Password: "); err != nil {
			return err
		}
		if e.Interactive {
			confirm, err := e.prompt.Password("Repeat password: ")
			if err != nil {
				return err
			}
			if confirm != data.Password {
				return &UsageError{Message: "passwords do not match"}
			}
		}
	}

	msg, err := e.App.API.Register(e.Context(), data)
	if err != nil {
		return err
	}
	return e.emitMessage(msg, "Registered "+data.Username+". You can now log in.")
}

// HandleForgotPassword handles "forgot-password".
func HandleForgotPassword(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	if _, err := e.enter(router.PathForgotPassword); err != nil {
		return err
	}

	account := p.FlagOrDefault("account", p.Positional(0))
	if account == "" {
		return missingArg("account", forgotUsage)
	}
	msg, err := e.App.API.ForgotPassword(e.Context(), account)
	if err != nil {
		return err
	}
	return e.emitMessage(msg, "A reset code has been sent for "+account+".")
}

// HandleResetPassword handles "reset-password". The reset form lives on
// the forgot-password screen.
func HandleResetPassword(e *Env) error {
	p := NewArgParser(e.Args.Raw)
	if _, err := e.enter(router.PathForgotPassword); err != nil {
		return err
	}

	data := api.ResetPasswordData{
		Account:     p.FlagOrDefault("account", p.Positional(0)),
		Code:        p.Flag("code"),
		NewPassword: p.Flag("new-password"),
	}
	if data.Account == "" {
		return missingArg("account", resetUsage)
	}
	if data.Code == "" {
		return missingArg("--code", resetUsage)
	}
	if data.NewPassword == "" {
		var err error
		if data.NewPassword, err = e.prompt.Password("New password: "); err != nil {
			return err
		}
	}

	msg, err := e.App.API.ResetPassword(e.Context(), data)
	if err != nil {
		return err
	}
	return e.emitMessage(msg, "Password updated for "+data.Account+".")
}

// emitMessage reports a backend status message, using fallback when the
// backend sent none.
func (e *Env) emitMessage(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return e.emit(MessageData{Message: msg}, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("OK"), msg)
	})
}
