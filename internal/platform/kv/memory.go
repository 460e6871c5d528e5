// Copyright (c) 2026 Atelier. All rights reserved.

package kv

import (
	"context"
	"sync"
)

// MemoryStore is an in-process [Store] used by unit tests and local tooling.
//
// It mirrors the backing store's semantics exactly: single-key atomicity,
// full-value overwrites, no expiry. PutCount exposes per-key write counts so
// tests can assert how often a hot key (e.g. the unfiltered list) was
// rewritten.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	puts   map[string]int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		puts:   make(map[string]int),
	}
}

// Get returns the value stored at key, or [ErrNotFound].
func (store *MemoryStore) Get(_ context.Context, key string) (string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Put overwrites the value stored at key.
func (store *MemoryStore) Put(_ context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	store.puts[key]++
	return nil
}

// PutCount returns how many times key has been written.
func (store *MemoryStore) PutCount(key string) int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.puts[key]
}

// Len returns the number of stored keys.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.values)
}
