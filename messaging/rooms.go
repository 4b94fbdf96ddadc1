// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/matrix-join/lib/ref"
)

// PublicRooms fetches one page of the public room directory.
//
// The response envelope is renamed (next_batch, total_room_count_estimate)
// and the room entries are returned as the server sent them. An entry
// without a room_id fails the call.
func (c *Client) PublicRooms(ctx context.Context, query PublicRoomsQuery) (*PublicRoomsResult, error) {
	body := publicRoomsBody{
		Limit: query.Limit,
		Since: query.Since,
	}
	if query.SearchTerm != "" {
		body.Filter = &publicRoomsFilter{GenericSearchTerm: query.SearchTerm}
	}

	responseBody, err := c.doRequest(ctx, requestOptions{
		method:        http.MethodPost,
		endpoint:      "publicRooms",
		query:         []queryParam{{key: "server", value: query.Server}},
		body:          body,
		authenticated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("messaging: public rooms failed: %w", err)
	}

	var response publicRoomsResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse public rooms response: %w", err)
	}
	for index, room := range response.Chunk {
		if room.RoomID.IsZero() {
			return nil, fmt.Errorf("messaging: public rooms entry %d has no room_id", index)
		}
	}

	return &PublicRoomsResult{
		Chunk:                  response.Chunk,
		NextBatch:              response.NextBatch,
		TotalRoomCountEstimate: response.TotalRoomCountEstimate,
	}, nil
}

// JoinRoom joins a room by ID or alias. The identifier is escaped into a
// single path segment; aliases contain '#' and ':' which are not valid
// unescaped there. The response body is not interpreted.
func (c *Client) JoinRoom(ctx context.Context, roomIDOrAlias string) error {
	if roomIDOrAlias == "" {
		return fmt.Errorf("messaging: room ID or alias is required")
	}

	_, err := c.doRequest(ctx, requestOptions{
		method:        http.MethodPost,
		endpoint:      "join/" + escapePathSegment(roomIDOrAlias),
		authenticated: true,
	})
	if err != nil {
		return fmt.Errorf("messaging: join room %s failed: %w", roomIDOrAlias, err)
	}

	c.logger.Info("joined matrix room", "room", roomIDOrAlias)
	return nil
}

// JoinRoomReference joins a validated room ID or alias.
func (c *Client) JoinRoomReference(ctx context.Context, room ref.RoomReference) error {
	if room.IsZero() {
		return fmt.Errorf("messaging: room reference is required")
	}
	return c.JoinRoom(ctx, room.String())
}

// JoinedRooms returns the IDs of the rooms the session has joined, in
// server order with duplicates removed.
func (c *Client) JoinedRooms(ctx context.Context) ([]ref.RoomID, error) {
	responseBody, err := c.doRequest(ctx, requestOptions{
		method:        http.MethodGet,
		endpoint:      "joined_rooms",
		authenticated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("messaging: joined rooms failed: %w", err)
	}

	var response joinedRoomsResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse joined rooms response: %w", err)
	}

	seen := make(map[ref.RoomID]struct{}, len(response.JoinedRooms))
	rooms := make([]ref.RoomID, 0, len(response.JoinedRooms))
	for _, roomID := range response.JoinedRooms {
		if roomID.IsZero() {
			continue
		}
		if _, duplicate := seen[roomID]; duplicate {
			continue
		}
		seen[roomID] = struct{}{}
		rooms = append(rooms, roomID)
	}
	return rooms, nil
}
