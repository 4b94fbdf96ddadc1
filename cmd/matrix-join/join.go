// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bureau-foundation/matrix-join/lib/config"
	"github.com/bureau-foundation/matrix-join/lib/ref"
	"github.com/bureau-foundation/matrix-join/messaging"
)

// logoutTimeout bounds the logout request, which runs detached from the
// run context.
const logoutTimeout = 10 * time.Second

// joinRoom runs the full sequence: log in, resolve the room (directory
// search unless target is set), join, confirm, and log out when
// configured. Logout runs whenever login succeeded, even if a later
// step failed or the run context ended.
func joinRoom(ctx context.Context, client *messaging.Client, cfg *config.Config, creds *credentials, target ref.RoomReference, logger *slog.Logger) (err error) {
	if err := login(ctx, client, creds); err != nil {
		return err
	}
	if cfg.Logout {
		defer func() {
			// The run context may already be past its deadline or
			// cancelled by a signal; the token must still be revoked.
			logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
			defer cancel()
			if logoutErr := client.Logout(logoutCtx); logoutErr != nil && err == nil {
				err = fmt.Errorf("logging out: %w", logoutErr)
			}
		}()
	}

	if target.IsZero() {
		room, err := findRoom(ctx, client, cfg.Room)
		if err != nil {
			return err
		}
		target = ref.RoomIDReference(room.RoomID)
	}

	if err := client.JoinRoomReference(ctx, target); err != nil {
		return fmt.Errorf("joining %s: %w", target, err)
	}

	roomID, known := target.RoomID()
	if !known {
		// Joining by alias does not report the resolved ID.
		logger.Info("joined room by alias", "room_alias", target.String())
		return nil
	}
	return confirmMembership(ctx, client, roomID, logger)
}

func login(ctx context.Context, client *messaging.Client, creds *credentials) error {
	if creds.loginToken != nil {
		if err := client.LoginWithToken(ctx, creds.loginToken.String()); err != nil {
			return fmt.Errorf("token login: %w", err)
		}
		return nil
	}
	if err := client.LoginWithCredentials(ctx, creds.username, creds.password); err != nil {
		return fmt.Errorf("password login as %s: %w", creds.username, err)
	}
	return nil
}

// findRoom pages through the public directory for a room whose canonical
// alias contains room.Alias.
func findRoom(ctx context.Context, client *messaging.Client, room config.RoomConfig) (*messaging.RoomSummary, error) {
	query := messaging.PublicRoomsQuery{
		Server:     room.Server,
		Limit:      room.Limit,
		SearchTerm: room.SearchTerm,
	}
	match := func(rooms []messaging.RoomSummary) (messaging.RoomSummary, bool) {
		return messaging.FindRoomByAlias(rooms, room.Alias)
	}
	summary, err := client.FindPublicRoom(ctx, query, room.MaxPages, match)
	if err != nil {
		return nil, fmt.Errorf("searching public rooms for %q: %w", room.Alias, err)
	}
	return summary, nil
}

func confirmMembership(ctx context.Context, client *messaging.Client, roomID ref.RoomID, logger *slog.Logger) error {
	joined, err := client.JoinedRooms(ctx)
	if err != nil {
		return fmt.Errorf("listing joined rooms: %w", err)
	}
	if !slices.Contains(joined, roomID) {
		return fmt.Errorf("room %s missing from joined rooms after join", roomID)
	}
	logger.Info("membership confirmed", "room_id", roomID, "joined_rooms", len(joined))
	return nil
}
