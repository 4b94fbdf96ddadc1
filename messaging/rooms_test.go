// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/bureau-foundation/matrix-join/lib/ref"
)

func TestPublicRooms(t *testing.T) {
	t.Run("search term omitted", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", request.Method)
			}
			if request.URL.Path != "/_matrix/client/unstable/publicRooms" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			if request.URL.RawQuery != "" {
				t.Errorf("expected no query string, got %q", request.URL.RawQuery)
			}
			assertAuth(t, request, "test-token")
			body := decodeBody(t, request)
			for _, key := range []string{"filter", "limit", "since"} {
				if _, present := body[key]; present {
					t.Errorf("unset %q should be omitted, body: %v", key, body)
				}
			}
			writeJSON(writer, map[string]any{"chunk": []any{}, "next_batch": "", "total_room_count_estimate": 0})
		}))

		if _, err := client.PublicRooms(context.Background(), PublicRoomsQuery{}); err != nil {
			t.Fatalf("PublicRooms failed: %v", err)
		}
	})

	t.Run("all query fields", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if server := request.URL.Query().Get("server"); server != "matrix.org" {
				t.Errorf("server = %q, want matrix.org", server)
			}
			body := decodeBody(t, request)
			filter, ok := body["filter"].(map[string]any)
			if !ok {
				t.Fatalf("missing filter object, body: %v", body)
			}
			if filter["generic_search_term"] != "Foo" {
				t.Errorf("generic_search_term = %v", filter["generic_search_term"])
			}
			if body["limit"] != float64(20) {
				t.Errorf("limit = %v", body["limit"])
			}
			if body["since"] != "batch-1" {
				t.Errorf("since = %v", body["since"])
			}
			writeJSON(writer, map[string]any{"chunk": []any{}})
		}))

		_, err := client.PublicRooms(context.Background(), PublicRoomsQuery{
			Server:     "matrix.org",
			Limit:      20,
			SearchTerm: "Foo",
			Since:      "batch-1",
		})
		if err != nil {
			t.Fatalf("PublicRooms failed: %v", err)
		}
	})

	t.Run("response field mapping", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assertNoAuth(t, request)
			writer.Header().Set("Content-Type", "application/json")
			io.WriteString(writer, `{
				"chunk": [
					{
						"room_id": "!jena:matrix.org",
						"num_joined_members": 42,
						"aliases": ["#JSinJena:matrix.org", "#jena-js:matrix.org"],
						"name": "JS in Jena",
						"canonical_alias": "#JSinJena:matrix.org",
						"world_readable": true,
						"guest_can_join": false
					},
					{
						"room_id": "!bare:matrix.org",
						"num_joined_members": 1,
						"world_readable": false,
						"guest_can_join": true
					}
				],
				"next_batch": "B",
				"total_room_count_estimate": 5
			}`)
		}))

		result, err := client.PublicRooms(context.Background(), PublicRoomsQuery{})
		if err != nil {
			t.Fatalf("PublicRooms failed: %v", err)
		}

		want := &PublicRoomsResult{
			Chunk: []RoomSummary{
				{
					RoomID:           ref.MustParseRoomID("!jena:matrix.org"),
					NumJoinedMembers: 42,
					Aliases:          []string{"#JSinJena:matrix.org", "#jena-js:matrix.org"},
					Name:             "JS in Jena",
					CanonicalAlias:   "#JSinJena:matrix.org",
					WorldReadable:    true,
				},
				{
					RoomID:           ref.MustParseRoomID("!bare:matrix.org"),
					NumJoinedMembers: 1,
					GuestCanJoin:     true,
				},
			},
			NextBatch:              "B",
			TotalRoomCountEstimate: 5,
		}
		if !reflect.DeepEqual(result, want) {
			t.Errorf("PublicRooms result mismatch:\n got: %+v\nwant: %+v", result, want)
		}
	})

	t.Run("error status", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeError(writer, http.StatusBadGateway, ErrCodeUnknown, "upstream unavailable")
		}))

		result, err := client.PublicRooms(context.Background(), PublicRoomsQuery{})
		if result != nil {
			t.Errorf("expected nil result on error, got %+v", result)
		}
		var requestErr *RequestError
		if !errors.As(err, &requestErr) {
			t.Fatalf("expected *RequestError, got %T: %v", err, err)
		}
		if requestErr.StatusCode != http.StatusBadGateway {
			t.Errorf("unexpected status: %d", requestErr.StatusCode)
		}
		if len(requestErr.Body) == 0 {
			t.Error("response body should be captured")
		}
	})

	t.Run("entry without room_id", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, map[string]any{"chunk": []map[string]any{{"name": "nameless"}}})
		}))
		if _, err := client.PublicRooms(context.Background(), PublicRoomsQuery{}); err == nil {
			t.Fatal("expected error for entry without room_id")
		}
	})

	t.Run("serverless room ID passes through", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, map[string]any{"chunk": []map[string]any{
				{"room_id": "!v12hashonly", "canonical_alias": "#new:matrix.org"},
				{"room_id": "!old:matrix.org", "canonical_alias": "#old:matrix.org"},
			}})
		}))
		result, err := client.PublicRooms(context.Background(), PublicRoomsQuery{})
		if err != nil {
			t.Fatalf("PublicRooms failed: %v", err)
		}
		if len(result.Chunk) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(result.Chunk))
		}
		if got := result.Chunk[0].RoomID.String(); got != "!v12hashonly" {
			t.Errorf("RoomID = %q, want !v12hashonly", got)
		}
	})

	t.Run("server with port is not escaped", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.RequestURI != "/_matrix/client/unstable/publicRooms?server=chat.example.org:8448" {
				t.Errorf("RequestURI = %q", request.RequestURI)
			}
			writeJSON(writer, map[string]any{"chunk": []any{}})
		}))
		if _, err := client.PublicRooms(context.Background(), PublicRoomsQuery{Server: "chat.example.org:8448"}); err != nil {
			t.Fatalf("PublicRooms failed: %v", err)
		}
	})

	t.Run("malformed response", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, map[string]any{"chunk": "not a list"})
		}))
		if _, err := client.PublicRooms(context.Background(), PublicRoomsQuery{}); err == nil {
			t.Fatal("expected error for malformed response")
		}
	})
}

func TestJoinRoom(t *testing.T) {
	t.Run("alias is escaped", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", request.Method)
			}
			assertAuth(t, request, "test-token")
			if request.RequestURI != "/_matrix/client/unstable/join/%23room%3Aserver.org" {
				t.Errorf("unexpected request URI: %s", request.RequestURI)
			}
			if request.URL.Path != "/_matrix/client/unstable/join/#room:server.org" {
				t.Errorf("unexpected decoded path: %s", request.URL.Path)
			}
			if request.ContentLength > 0 {
				t.Errorf("join should send no body, got %d bytes", request.ContentLength)
			}
			writeJSON(writer, map[string]string{"room_id": "!room1:server.org"})
		}))

		if err := client.JoinRoom(context.Background(), "#room:server.org"); err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	})

	t.Run("plain identifier unmodified", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.RequestURI != "/_matrix/client/unstable/join/abcdef" {
				t.Errorf("unexpected request URI: %s", request.RequestURI)
			}
			writeJSON(writer, map[string]any{})
		}))

		if err := client.JoinRoom(context.Background(), "abcdef"); err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	})

	t.Run("room reference", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/_matrix/client/unstable/join/!jena:matrix.org" {
				t.Errorf("unexpected decoded path: %s", request.URL.Path)
			}
			writeJSON(writer, map[string]any{})
		}))

		room := ref.RoomIDReference(ref.MustParseRoomID("!jena:matrix.org"))
		if err := client.JoinRoomReference(context.Background(), room); err != nil {
			t.Fatalf("JoinRoomReference failed: %v", err)
		}
		if err := client.JoinRoomReference(context.Background(), ref.RoomReference{}); err == nil {
			t.Error("expected error for zero room reference")
		}
	})

	t.Run("forbidden", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeError(writer, http.StatusForbidden, ErrCodeForbidden, "You are not invited to this room.")
		}))

		err := client.JoinRoom(context.Background(), "!private:server.org")
		var requestErr *RequestError
		if !errors.As(err, &requestErr) {
			t.Fatalf("expected *RequestError, got %T: %v", err, err)
		}
		if !IsMatrixError(err, ErrCodeForbidden) {
			t.Errorf("expected M_FORBIDDEN, got: %v", err)
		}
	})

	t.Run("empty identifier", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())
		if err := client.JoinRoom(context.Background(), ""); err == nil {
			t.Fatal("expected error for empty room identifier")
		}
	})
}

func TestJoinedRooms(t *testing.T) {
	t.Run("deduplicates in server order", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != http.MethodGet {
				t.Errorf("unexpected method: %s", request.Method)
			}
			assertAuth(t, request, "test-token")
			writeJSON(writer, map[string]any{
				"joined_rooms": []string{"!b:example.org", "!a:example.org", "!b:example.org"},
			})
		}))

		rooms, err := client.JoinedRooms(context.Background())
		if err != nil {
			t.Fatalf("JoinedRooms failed: %v", err)
		}
		want := []ref.RoomID{ref.MustParseRoomID("!b:example.org"), ref.MustParseRoomID("!a:example.org")}
		if !reflect.DeepEqual(rooms, want) {
			t.Errorf("JoinedRooms = %v, want %v", rooms, want)
		}
	})

	t.Run("error status", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(writer, "<html>maintenance</html>")
		}))

		rooms, err := client.JoinedRooms(context.Background())
		if rooms != nil {
			t.Errorf("expected nil rooms on error, got %v", rooms)
		}
		var requestErr *RequestError
		if !errors.As(err, &requestErr) {
			t.Fatalf("expected *RequestError, got %T: %v", err, err)
		}
		if requestErr.Code != "" {
			t.Errorf("non-JSON body should leave Code empty, got %q", requestErr.Code)
		}
		if string(requestErr.Body) != "<html>maintenance</html>" {
			t.Errorf("unexpected captured body: %q", requestErr.Body)
		}
	})

	t.Run("serverless room ID passes through", func(t *testing.T) {
		client := newAuthenticatedClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, map[string]any{"joined_rooms": []string{"!abc:example.org", "!v12hashonly"}})
		}))
		rooms, err := client.JoinedRooms(context.Background())
		if err != nil {
			t.Fatalf("JoinedRooms failed: %v", err)
		}
		if len(rooms) != 2 || rooms[1].String() != "!v12hashonly" {
			t.Errorf("unexpected rooms: %v", rooms)
		}
	})
}

// TestSessionScenario walks the login, joined-rooms flow against a
// homeserver at https://example.org.
func TestSessionScenario(t *testing.T) {
	homeserver := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Host != "example.org" {
			t.Errorf("unexpected host: %s", request.Host)
		}
		switch request.URL.Path {
		case "/_matrix/client/unstable/login":
			body := decodeBody(t, request)
			if body["user"] != "alice" || body["password"] != "secret" {
				t.Errorf("unexpected credentials: %v", body)
			}
			writeJSON(writer, map[string]string{"access_token": "tok123"})
		case "/_matrix/client/unstable/joined_rooms":
			assertAuth(t, request, "tok123")
			writeJSON(writer, map[string]any{"joined_rooms": []string{"!abc:example.org"}})
		default:
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	})

	client, err := NewClient(ClientConfig{
		HomeserverURL: "https://example.org",
		HTTPClient:    &http.Client{Transport: handlerTransport(homeserver)},
		Logger:        discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if err := client.LoginWithCredentials(context.Background(), "alice", testBuffer(t, "secret")); err != nil {
		t.Fatalf("LoginWithCredentials failed: %v", err)
	}
	rooms, err := client.JoinedRooms(context.Background())
	if err != nil {
		t.Fatalf("JoinedRooms failed: %v", err)
	}
	if len(rooms) != 1 || rooms[0].String() != "!abc:example.org" {
		t.Errorf("JoinedRooms = %v, want [!abc:example.org]", rooms)
	}
}
