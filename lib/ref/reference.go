// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// RoomReference is either a RoomID or a RoomAlias. The join endpoint
// accepts both, so callers that take user input parse into a
// RoomReference rather than guessing which form they were given.
type RoomReference struct {
	id    RoomID
	alias RoomAlias
}

// ParseRoomReference parses raw as a room ID when it starts with '!'
// and as a room alias when it starts with '#'.
func ParseRoomReference(raw string) (RoomReference, error) {
	if raw == "" {
		return RoomReference{}, fmt.Errorf("empty room reference")
	}
	switch raw[0] {
	case '!':
		id, err := ParseRoomID(raw)
		if err != nil {
			return RoomReference{}, err
		}
		return RoomReference{id: id}, nil
	case '#':
		alias, err := ParseRoomAlias(raw)
		if err != nil {
			return RoomReference{}, err
		}
		return RoomReference{alias: alias}, nil
	default:
		return RoomReference{}, fmt.Errorf("room reference must start with '!' or '#': %q", raw)
	}
}

// RoomIDReference wraps an already-validated room ID.
func RoomIDReference(id RoomID) RoomReference {
	return RoomReference{id: id}
}

// RoomID returns the room ID and true when the reference holds one.
func (r RoomReference) RoomID() (RoomID, bool) { return r.id, !r.id.IsZero() }

// IsZero reports whether the reference holds neither form.
func (r RoomReference) IsZero() bool { return r.id.IsZero() && r.alias.IsZero() }

// String returns whichever identifier the reference holds.
func (r RoomReference) String() string {
	if !r.alias.IsZero() {
		return r.alias.String()
	}
	return r.id.String()
}
