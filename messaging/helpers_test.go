// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bureau-foundation/matrix-join/lib/secret"
)

// testBuffer creates a secret.Buffer from a string. The buffer is closed
// when the test completes.
func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("creating test buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

// discardLogger keeps test output free of client log lines.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient creates an anonymous Client pointing at a test server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// newAuthenticatedClient creates a Client that has already logged in
// with token "test-token". Login requests are answered by the helper;
// all other requests go to handler.
func newAuthenticatedClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == apiPrefix+"login" {
			writeJSON(writer, map[string]string{"access_token": "test-token"})
			return
		}
		handler.ServeHTTP(writer, request)
	}))
	if err := client.LoginWithToken(t.Context(), "login-token"); err != nil {
		t.Fatalf("LoginWithToken failed: %v", err)
	}
	return client
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(request *http.Request) (*http.Response, error) {
	return f(request)
}

// handlerTransport serves requests for any host with handler, so tests
// can use a realistic homeserver URL such as https://example.org.
func handlerTransport(handler http.Handler) http.RoundTripper {
	return roundTripFunc(func(request *http.Request) (*http.Response, error) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Result(), nil
	})
}

func assertAuth(t *testing.T, request *http.Request, expectedToken string) {
	t.Helper()
	auth := request.Header.Get("Authorization")
	expected := "Bearer " + expectedToken
	if auth != expected {
		t.Errorf("unexpected auth header: got %q, want %q", auth, expected)
	}
}

func assertNoAuth(t *testing.T, request *http.Request) {
	t.Helper()
	if auth := request.Header.Get("Authorization"); auth != "" {
		t.Errorf("expected no auth header, got %q", auth)
	}
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}

func writeError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(matrixErrorBody{Code: code, Message: message})
}

// decodeBody decodes a JSON request body into a generic map so tests can
// assert on which keys are present.
func decodeBody(t *testing.T, request *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return body
}
