// Copyright (c) 2026 Atelier. All rights reserved.

/*
Package kv provides the key-value store adapter that persists the
denormalized gallery indices.

The backing store offers single-key atomicity only: no transactions, no
multi-key writes, and eventual read-after-write consistency that is assumed
good enough for this workload. Every higher-level consistency guarantee
(index completeness, idempotent ID assignment, collision detection) is the
responsibility of the callers in internal/core/works.

Core Responsibilities:

  - Opacity: Keys and values are opaque strings; serialization lives upstream.
  - Durability: The Redis implementation is the primary store, not a cache.
  - Testability: The Memory implementation backs all unit tests.
*/
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
//
// Callers distinguish "absent" from genuine store failures with
// [errors.Is](err, ErrNotFound).
var ErrNotFound = errors.New("kv: key not found")

// Store is the minimal contract the gallery indices are built on.
//
// Implementations must treat each Put as a full overwrite of the value at
// key. There is no compare-and-swap: concurrent writers to the same key
// race, and the design accepts the last write winning.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Put overwrites the value stored at key.
	Put(ctx context.Context, key, value string) error
}

// IsNotFound reports whether err indicates an absent key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
