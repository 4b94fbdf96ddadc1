// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
)

// RequestError reports a homeserver response outside the 2xx range.
// Client errors (4xx) and server errors (5xx) are not distinguished;
// callers inspect StatusCode, Code, or Body. Callers use errors.As:
//
//	var requestErr *RequestError
//	if errors.As(err, &requestErr) && requestErr.StatusCode == http.StatusNotFound { ... }
type RequestError struct {
	// Method and Endpoint identify the request (Endpoint is relative to
	// the client API prefix, e.g. "joined_rooms").
	Method   string
	Endpoint string

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Body is the raw response body, captured for diagnostics.
	Body []byte

	// Code and Message are the Matrix "errcode" and "error" fields when
	// the body is a standard Matrix error object. Empty otherwise.
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("matrix: %s %s: %s (%d): %s", e.Method, e.Endpoint, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("matrix: %s %s: unexpected status %d: %s", e.Method, e.Endpoint, e.StatusCode, truncate(string(e.Body), 256))
}

// AuthError reports a login attempt that did not produce a usable access
// token. When the homeserver rejected the login outright, Err holds the
// underlying *RequestError.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("messaging: authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "messaging: authentication failed: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrRoomNotFound is returned by FindPublicRoom when no page of the
// directory contains a matching room.
var ErrRoomNotFound = errors.New("messaging: room not found in public directory")

// Standard Matrix error codes.
const (
	ErrCodeForbidden     = "M_FORBIDDEN"
	ErrCodeMissingToken  = "M_MISSING_TOKEN"
	ErrCodeNotFound      = "M_NOT_FOUND"
	ErrCodeLimitExceeded = "M_LIMIT_EXCEEDED"
	ErrCodeUnknown       = "M_UNKNOWN"
)

// IsMatrixError reports whether err wraps a *RequestError with the given
// Matrix error code.
func IsMatrixError(err error, code string) bool {
	var requestErr *RequestError
	if errors.As(err, &requestErr) {
		return requestErr.Code == code
	}
	return false
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
