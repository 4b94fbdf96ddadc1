// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/matrix-join/lib/config"
	"github.com/bureau-foundation/matrix-join/lib/ref"
)

// flags holds command-line values. Only flags the user actually set are
// applied over the loaded config.
type flags struct {
	configPath     string
	homeserver     string
	username       string
	passwordFile   string
	loginTokenFile string
	roomAlias      string
	searchTerm     string
	server         string
	limit          int
	maxPages       int
	room           string
	noLogout       bool
	strictExit     bool
	timeout        string
	logLevel       string
	showVersion    bool
}

func newFlags() (*flags, *pflag.FlagSet) {
	options := &flags{}
	flagSet := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	flagSet.StringVar(&options.configPath, "config", "", "path to a YAML or JSONC config file (default: $MATRIX_JOIN_CONFIG)")
	flagSet.StringVar(&options.homeserver, "homeserver", "", "Matrix homeserver URL")
	flagSet.StringVar(&options.username, "username", "", "account to log in as")
	flagSet.StringVar(&options.passwordFile, "password-file", "", "path to file containing the password, or - for stdin (default: prompt)")
	flagSet.StringVar(&options.loginTokenFile, "login-token-file", "", "path to file containing a login token; selects token login")
	flagSet.StringVar(&options.roomAlias, "room-alias", "", "canonical alias (or part of one) to find in the public directory")
	flagSet.StringVar(&options.searchTerm, "search-term", "", "server-side directory search filter")
	flagSet.StringVar(&options.server, "server", "", "read another server's public directory")
	flagSet.IntVar(&options.limit, "limit", 0, "directory page size (0: server default)")
	flagSet.IntVar(&options.maxPages, "max-pages", 0, "maximum directory pages to read")
	flagSet.StringVar(&options.room, "room", "", "room ID or alias to join directly, skipping the directory search")
	flagSet.BoolVar(&options.noLogout, "no-logout", false, "keep the session after joining")
	flagSet.BoolVar(&options.strictExit, "strict-exit", false, "exit 1 when login, search, or join fails")
	flagSet.StringVar(&options.timeout, "timeout", "", "overall deadline, e.g. 30s")
	flagSet.StringVar(&options.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&options.showVersion, "version", false, "print version information and exit")
	return options, flagSet
}

// apply overrides cfg with every flag set on the command line.
func (f *flags) apply(flagSet *pflag.FlagSet, cfg *config.Config) {
	if flagSet.Changed("homeserver") {
		cfg.Homeserver = f.homeserver
	}
	if flagSet.Changed("username") {
		cfg.Username = f.username
	}
	if flagSet.Changed("password-file") {
		cfg.PasswordFile = f.passwordFile
	}
	if flagSet.Changed("login-token-file") {
		cfg.LoginTokenFile = f.loginTokenFile
	}
	if flagSet.Changed("room-alias") {
		cfg.Room.Alias = f.roomAlias
	}
	if flagSet.Changed("search-term") {
		cfg.Room.SearchTerm = f.searchTerm
	}
	if flagSet.Changed("server") {
		cfg.Room.Server = f.server
	}
	if flagSet.Changed("limit") {
		cfg.Room.Limit = f.limit
	}
	if flagSet.Changed("max-pages") {
		cfg.Room.MaxPages = f.maxPages
	}
	if flagSet.Changed("no-logout") {
		cfg.Logout = !f.noLogout
	}
	if flagSet.Changed("strict-exit") {
		cfg.StrictExit = f.strictExit
	}
	if flagSet.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
}

// roomReference parses --room. The zero reference means search the
// directory instead.
func (f *flags) roomReference() (ref.RoomReference, error) {
	if f.room == "" {
		return ref.RoomReference{}, nil
	}
	reference, err := ref.ParseRoomReference(f.room)
	if err != nil {
		return ref.RoomReference{}, fmt.Errorf("--room: %w", err)
	}
	return reference, nil
}
