// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds credentials (passwords, access tokens) in memory
// outside the Go heap.
//
// [Buffer] is backed by an anonymous mmap region that is locked against
// swap (mlock) and excluded from core dumps (MADV_DONTDUMP). Close zeros,
// unlocks, and unmaps it; any read after Close panics.
//
// Constructors:
//
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [NewFromString] -- convenience for values that already live on the heap
//   - [ReadFromPath] -- reads a file (or stdin for "-") and trims whitespace
//
// [Buffer.String] returns a heap copy for API boundaries such as a JSON
// request body or an Authorization header.
package secret
