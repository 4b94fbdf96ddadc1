// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/matrix-join/lib/config"
	"github.com/bureau-foundation/matrix-join/lib/secret"
)

// credentials holds exactly one of a password or a login token.
type credentials struct {
	username   string
	password   *secret.Buffer
	loginToken *secret.Buffer
}

func (c *credentials) Close() {
	if c.password != nil {
		c.password.Close()
	}
	if c.loginToken != nil {
		c.loginToken.Close()
	}
}

// readCredentials reads the login token file when one is configured,
// and the password otherwise.
func readCredentials(cfg *config.Config) (*credentials, error) {
	if cfg.UsesTokenLogin() {
		token, err := secret.ReadFromPath(cfg.LoginTokenFile)
		if err != nil {
			return nil, fmt.Errorf("reading login token: %w", err)
		}
		return &credentials{loginToken: token}, nil
	}

	password, err := readPassword(cfg.PasswordFile)
	if err != nil {
		return nil, err
	}
	return &credentials{username: cfg.Username, password: password}, nil
}

// readPassword reads from passwordFile when set, otherwise prompts on
// the terminal with echo disabled.
func readPassword(passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" {
		buffer, err := secret.ReadFromPath(passwordFile)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return buffer, nil
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, errors.New("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, err
	}
	return buffer, nil
}
