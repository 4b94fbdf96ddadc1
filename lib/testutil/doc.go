// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [WriteFile] and [WriteTempFile] write config, credential, and .env
// fixtures with the permissions a real deployment would use and fail
// the test on error.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as distinct access tokens handed out by a fake
// homeserver.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
