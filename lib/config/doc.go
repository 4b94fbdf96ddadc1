// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the matrix-join configuration file.
//
// The file is specified by either the MATRIX_JOIN_CONFIG environment
// variable (via [Load]) or a --config flag (via [LoadFile]). There is no
// automatic discovery. Files ending in .json or .jsonc are parsed as JSON
// with comments and trailing commas allowed; anything else is YAML.
// Unknown keys are rejected in both formats.
//
// Environment variables never override config values. They are only
// consulted for ${VAR} and ${VAR:-default} expansion in the homeserver
// URL and the credential file paths. A .env file next to the config file
// is loaded into the process environment first (existing variables win),
// so deployments can keep paths out of the checked-in config.
//
// [Config.Validate] checks the loaded values with struct tags, and
// reports field names as they appear in the file.
package config
