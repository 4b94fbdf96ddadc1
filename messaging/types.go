// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"github.com/bureau-foundation/matrix-join/lib/ref"
	"github.com/bureau-foundation/matrix-join/lib/secret"
)

// LoginType is the Matrix login flow identifier sent as "type".
type LoginType string

const (
	LoginTypePassword LoginType = "m.login.password"
	LoginTypeToken    LoginType = "m.login.token"
	LoginTypeSAML2    LoginType = "m.login.saml2"
)

// LoginRequest selects one login flow and carries its credentials. Build
// it with PasswordLogin, TokenLogin, or SAML2Login; only the fields of
// the selected flow are sent.
//
// The Password buffer is read but not closed. The caller retains
// ownership.
type LoginRequest struct {
	Type       LoginType
	User       string
	Password   *secret.Buffer
	Token      string
	RelayState string
}

// PasswordLogin returns a password-flow LoginRequest.
func PasswordLogin(user string, password *secret.Buffer) LoginRequest {
	return LoginRequest{Type: LoginTypePassword, User: user, Password: password}
}

// TokenLogin returns a token-flow LoginRequest.
func TokenLogin(token string) LoginRequest {
	return LoginRequest{Type: LoginTypeToken, Token: token}
}

// SAML2Login returns a SAML2-flow LoginRequest carrying the relay state.
func SAML2Login(relayState string) LoginRequest {
	return LoginRequest{Type: LoginTypeSAML2, RelayState: relayState}
}

// loginBody is the wire form of POST login.
type loginBody struct {
	Type       LoginType `json:"type"`
	User       string    `json:"user,omitempty"`
	Password   string    `json:"password,omitempty"`
	Token      string    `json:"token,omitempty"`
	RelayState string    `json:"relayState,omitempty"`
}

// loginResponse is the subset of the login response the client reads.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
}

// PublicRoomsQuery controls a public room directory query. Zero-valued
// fields are omitted from the request.
type PublicRoomsQuery struct {
	// Server asks the homeserver to return another server's directory.
	// Sent as the "server" query parameter.
	Server string
	// Limit caps the number of rooms returned; 0 uses the server default.
	Limit int
	// SearchTerm filters rooms server-side via filter.generic_search_term.
	SearchTerm string
	// Since is a pagination token from a previous result's NextBatch.
	Since string
}

// publicRoomsBody is the wire form of POST publicRooms.
type publicRoomsBody struct {
	Limit  int                `json:"limit,omitempty"`
	Since  string             `json:"since,omitempty"`
	Filter *publicRoomsFilter `json:"filter,omitempty"`
}

type publicRoomsFilter struct {
	GenericSearchTerm string `json:"generic_search_term"`
}

// publicRoomsResponse is the wire form of the publicRooms response.
type publicRoomsResponse struct {
	Chunk                  []RoomSummary `json:"chunk"`
	NextBatch              string        `json:"next_batch"`
	TotalRoomCountEstimate int           `json:"total_room_count_estimate"`
}

// PublicRoomsResult is one page of the public room directory.
type PublicRoomsResult struct {
	Chunk []RoomSummary
	// NextBatch is the pagination token for the next page; empty on the
	// last page.
	NextBatch string
	// TotalRoomCountEstimate is the server's estimate of the directory size.
	TotalRoomCountEstimate int
}

// RoomSummary is one public room directory entry, decoded as the server
// sent it.
type RoomSummary struct {
	RoomID           ref.RoomID `json:"room_id"`
	NumJoinedMembers int        `json:"num_joined_members"`
	Aliases          []string   `json:"aliases,omitempty"`
	Name             string     `json:"name,omitempty"`
	CanonicalAlias   string     `json:"canonical_alias,omitempty"`
	WorldReadable    bool       `json:"world_readable"`
	GuestCanJoin     bool       `json:"guest_can_join"`
}

// joinedRoomsResponse is the wire form of the joined_rooms response.
type joinedRoomsResponse struct {
	JoinedRooms []ref.RoomID `json:"joined_rooms"`
}

// matrixErrorBody is the standard Matrix error object.
type matrixErrorBody struct {
	Code    string `json:"errcode"`
	Message string `json:"error"`
}
