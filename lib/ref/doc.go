// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated, immutable value types for the Matrix
// room identifiers this client handles.
//
// [RoomID] is the server-assigned opaque identifier ("!abc:server", or
// just "!hash" from room version 12 on).
// [RoomAlias] is the human-readable name ("#room:server") that a server
// resolves to a RoomID. [RoomReference] holds either one, matching the
// join endpoint which accepts both forms.
//
// The Parse constructors validate user input strictly and return errors
// for malformed identifiers. RoomID also implements
// encoding.TextUnmarshaler, which only checks the '!' sigil, so response
// fields typed as RoomID accept every room version the server reports.
//
// This package depends on no other packages in this module.
package ref
