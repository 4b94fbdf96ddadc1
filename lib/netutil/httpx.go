// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response body readers.
//
// Every helper caps reads at MaxResponseSize so that a misbehaving
// homeserver cannot exhaust memory. They are meant for JSON API
// responses, which are orders of magnitude smaller than the limit.
package netutil

import (
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 16 MB.
// A full public room directory page is a few hundred kilobytes.
const MaxResponseSize int64 = 16 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ErrorBody reads an HTTP error response body and returns it as a string
// for diagnostic messages. Read errors are ignored; a partial or empty
// body is still useful in an error message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}

// Drain discards up to MaxResponseSize bytes of a response body so the
// underlying connection can be reused, and reports how many bytes were
// discarded.
func Drain(body io.Reader) int64 {
	discarded, _ := io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
	return discarded
}
