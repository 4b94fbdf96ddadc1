// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is a minimal client for the Matrix client-server API:
// log in, discover public rooms, join a room, list joined rooms, log out.
//
// [Client] targets one homeserver and holds at most one access token.
// Every endpoint lives under /_matrix/client/unstable/. Each operation is
// a single request/response exchange: no retries, no caching, no
// background work. The context passed to each method is the only
// cancellation mechanism.
//
// Authentication state has two values. A new Client is anonymous. A
// successful [Client.Login] (or one of the LoginWith* wrappers) stores
// the returned access token in mmap-backed memory ([secret.Buffer]) and
// every later request carries it as "Authorization: Bearer <token>".
// [Client.Logout] sends the logout request, ignores its status, and
// returns the client to the anonymous state. Requests made while
// anonymous are sent without an Authorization header; the homeserver
// decides whether to accept them.
//
// Errors come in two kinds. [*RequestError] reports any response outside
// the 2xx range and carries the captured body plus the parsed Matrix
// errcode when the body has one. [*AuthError] reports a login that did
// not yield a usable token: a 2xx response without access_token, or a
// non-2xx response (in which case it wraps the RequestError).
// [IsMatrixError] tests for a specific errcode through either wrapper.
//
// A Client is not meant to be shared between goroutines issuing
// concurrent calls. The token is read under a mutex so a request always
// sees a consistent snapshot, but nothing orders a concurrent Login or
// Logout against requests already in flight.
package messaging
