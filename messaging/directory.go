// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"strings"
)

// FindRoomByAlias returns the last room in rooms whose canonical alias
// contains substring. Rooms without a canonical alias never match.
func FindRoomByAlias(rooms []RoomSummary, substring string) (RoomSummary, bool) {
	for index := len(rooms) - 1; index >= 0; index-- {
		alias := rooms[index].CanonicalAlias
		if alias != "" && strings.Contains(alias, substring) {
			return rooms[index], true
		}
	}
	return RoomSummary{}, false
}

// FindPublicRoom pages through the public room directory starting from
// query until match selects a room from a page, the directory is
// exhausted, or maxPages pages have been read (maxPages <= 0 means one
// page). Each page is a separate PublicRooms call. Returns
// ErrRoomNotFound when nothing matched.
func (c *Client) FindPublicRoom(ctx context.Context, query PublicRoomsQuery, maxPages int, match func([]RoomSummary) (RoomSummary, bool)) (*RoomSummary, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	for page := 0; page < maxPages; page++ {
		result, err := c.PublicRooms(ctx, query)
		if err != nil {
			return nil, err
		}

		if room, found := match(result.Chunk); found {
			c.logger.Info("found public room",
				"room_id", room.RoomID,
				"canonical_alias", room.CanonicalAlias,
				"page", page+1,
			)
			return &room, nil
		}

		// A repeated token would loop forever on a misbehaving server.
		if result.NextBatch == "" || result.NextBatch == query.Since {
			break
		}
		query.Since = result.NextBatch
	}
	return nil, ErrRoomNotFound
}
