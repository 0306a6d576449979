// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command handler.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)      Show all settings
//	get <key>           Show one setting
//	set <key> <value>   Change a setting and save the file
//	path                Show the config file path
//
// Examples:
//
//	assistchat config set api.base_url https://chat.example.com/api
//	assistchat config set storage.backend sqlite
//	assistchat config get ui.theme --json

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/assistchat/internal/config"
)

const configUsage = "assistchat config [show | get <key> | set <key> <value> | path]"

// HandleConfig handles "config". It operates on cfg, the configuration
// already loaded for this run.
func HandleConfig(e *Env, cfg *config.Config) error {
	p := NewArgParser(e.Args.Raw)
	path, err := configPath(e.Args)
	if err != nil {
		return err
	}

	switch p.Subcommand() {
	case "", "show", "list":
		return e.emit(ConfigData{Path: path, Config: cfg}, func(w io.Writer) {
			writeConfig(w, cfg, path)
		})

	case "get":
		key := p.Positional(1)
		if key == "" {
			return missingArg("key", configUsage)
		}
		value, err := cfg.Get(key)
		if err != nil {
			return &UsageError{Message: err.Error(), Usage: "keys: " + strings.Join(config.GetAllKeys(), ", ")}
		}
		return e.emit(ConfigData{Path: path, Key: key, Value: value}, func(w io.Writer) {
			fmt.Fprintln(w, value)
		})

	case "set":
		key, value := p.Positional(1), strings.Join(p.PositionalFrom(2), " ")
		if key == "" || p.PositionalCount() < 3 {
			return missingArg("key and value", configUsage)
		}
		return e.setConfig(cfg, path, key, value)

	case "path":
		return e.emit(ConfigData{Path: path}, func(w io.Writer) {
			fmt.Fprintln(w, path)
		})
	}
	return &UsageError{Message: fmt.Sprintf("unknown subcommand %q", p.Subcommand()), Usage: configUsage}
}

func (e *Env) setConfig(cfg *config.Config, path, key, value string) error {
	updated := cfg.Clone()
	if err := updated.Set(key, value); err != nil {
		return &UsageError{Message: err.Error(), Usage: "keys: " + strings.Join(config.GetAllKeys(), ", ")}
	}
	if err := updated.Migrate(); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(updated, path)
	} else {
		err = config.SaveTOML(updated, path)
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	stored, _ := updated.Get(key)
	return e.emit(ConfigData{Path: path, Key: key, Value: stored}, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("Set"), key, stored)
		fmt.Fprintln(w, DimStyle.Render("Saved to "+path))
	})
}

// configPath is the file "config set" writes: --config when given,
// otherwise the default TOML file.
func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func writeConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, TitleStyle.Render("Configuration"))
	fmt.Fprintln(w, DimStyle.Render(path))
	fmt.Fprintln(w)

	section := ""
	for _, key := range config.GetAllKeys() {
		head, _, _ := strings.Cut(key, ".")
		if head != section {
			if section != "" {
				fmt.Fprintln(w)
			}
			section = head
			fmt.Fprintln(w, "["+section+"]")
		}
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s%v\n", LabelStyle.Width(24).Render(key), value)
	}
}
