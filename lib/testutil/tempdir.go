// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to directory/name and returns the path.
// Files whose name suggests a credential ("password", "token", ".env")
// are written 0600, everything else 0644.
func WriteFile(t *testing.T, directory, name, content string) string {
	t.Helper()

	mode := os.FileMode(0644)
	if isCredentialFile(name) {
		mode = 0600
	}

	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// WriteTempFile writes content to a file in a fresh t.TempDir().
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), name, content)
}

func isCredentialFile(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	return base == ".env" || strings.Contains(base, "password") || strings.Contains(base, "token")
}
