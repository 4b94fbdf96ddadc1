// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// RoomID is a validated Matrix room ID (e.g., "!abc123:matrix.org").
//
// Room IDs are server-assigned and always start with '!'. Before room
// version 12 they also carry a ':server' suffix; version 12 IDs are an
// opaque hash with no server part. ParseRoomID is strict and requires the
// suffix, since it validates what a user typed. UnmarshalText is lenient
// and accepts any '!'-prefixed ID, since it decodes what the homeserver
// sent in public room listings and joined_rooms responses.
//
// The zero value is not valid; use IsZero to check.
type RoomID struct {
	id string
}

// ParseRoomID validates and wraps a raw Matrix room ID string.
func ParseRoomID(raw string) (RoomID, error) {
	if _, _, err := parsePrefixedID(raw, '!', "room ID"); err != nil {
		return RoomID{}, err
	}
	return RoomID{id: raw}, nil
}

// MustParseRoomID is like ParseRoomID but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseRoomID(raw string) RoomID {
	id, err := ParseRoomID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseRoomID(%q): %v", raw, err))
	}
	return id
}

// String returns the full room ID string.
func (r RoomID) String() string { return r.id }

// IsZero reports whether the RoomID is the zero value (uninitialized).
func (r RoomID) IsZero() bool { return r.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (r RoomID) MarshalText() ([]byte, error) {
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value. Anything else only needs the '!' sigil, so
// server-less version 12 IDs decode.
func (r *RoomID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*r = RoomID{}
		return nil
	}
	if data[0] != '!' || len(data) == 1 {
		return fmt.Errorf("room ID must be '!' followed by an opaque identifier: %q", data)
	}
	*r = RoomID{id: string(data)}
	return nil
}
