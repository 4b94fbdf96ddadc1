// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "MATRIX_JOIN_CONFIG"

// Config is the matrix-join configuration.
type Config struct {
	// Homeserver is the base URL of the Matrix homeserver.
	// Default: https://matrix.org
	Homeserver string `yaml:"homeserver" json:"homeserver" validate:"required,http_url"`

	// Username is the login name for password login. Not needed when
	// LoginTokenFile is set.
	Username string `yaml:"username" json:"username" validate:"required_without=LoginTokenFile"`

	// PasswordFile is a path to a file holding the password, or "-" for
	// stdin. Empty means prompt on the terminal.
	PasswordFile string `yaml:"password_file" json:"password_file"`

	// LoginTokenFile is a path to a file holding a single-use login
	// token. When set, token login is used instead of password login.
	LoginTokenFile string `yaml:"login_token_file" json:"login_token_file"`

	// Room selects the room to find and join.
	Room RoomConfig `yaml:"room" json:"room"`

	// Logout ends the session after joining.
	// Default: true
	Logout bool `yaml:"logout" json:"logout"`

	// StrictExit makes the process exit non-zero on failure. The default
	// (false) always exits 0.
	StrictExit bool `yaml:"strict_exit" json:"strict_exit"`

	// Timeout bounds the whole run, as a Go duration string.
	// Default: 2m
	Timeout string `yaml:"timeout" json:"timeout" validate:"omitempty,duration"`
}

// RoomConfig selects the room to join from the public directory.
type RoomConfig struct {
	// Alias is matched as a substring of each room's canonical alias.
	// Default: #JSinJena:matrix.org
	Alias string `yaml:"alias" json:"alias" validate:"required"`

	// SearchTerm is passed to the directory as a server-side filter.
	SearchTerm string `yaml:"search_term" json:"search_term"`

	// Server asks the homeserver for another server's directory.
	Server string `yaml:"server" json:"server" validate:"omitempty,hostname_port|hostname"`

	// Limit is the page size; 0 uses the server default.
	Limit int `yaml:"limit" json:"limit" validate:"gte=0"`

	// MaxPages bounds directory pagination.
	// Default: 1
	MaxPages int `yaml:"max_pages" json:"max_pages" validate:"gte=0"`
}

// Default returns the configuration used as a base before the file is
// loaded. Out of the box it joins #JSinJena on matrix.org, reading
// one directory page.
func Default() *Config {
	return &Config{
		Homeserver: "https://matrix.org",
		Room: RoomConfig{
			Alias:    "#JSinJena:matrix.org",
			MaxPages: 1,
		},
		Logout:  true,
		Timeout: "2m",
	}
}

// Load loads configuration from the file named by MATRIX_JOIN_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// Default, then expands variables. It does not validate; callers apply
// flag overrides first and then call Validate.
func LoadFile(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.decode(path, data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// loadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// decode merges data into c, choosing the format by file extension.
func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		err := decoder.Decode(c)
		// An empty YAML document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns.
func (c *Config) expandVariables() {
	c.Homeserver = expandVars(c.Homeserver)
	c.PasswordFile = expandVars(c.PasswordFile)
	c.LoginTokenFile = expandVars(c.LoginTokenFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// TimeoutDuration returns the parsed Timeout, or zero when unset.
// Validate guarantees the string parses.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return duration
}

// UsesTokenLogin reports whether the config selects token login.
func (c *Config) UsesTokenLogin() bool {
	return c.LoginTokenFile != ""
}
