// Copyright (c) 2026 Atelier. All rights reserved.

package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/platform/kv"
)

/*
TestMemoryStore_GetMissingKey verifies absent keys surface ErrNotFound.
*/
func TestMemoryStore_GetMissingKey(t *testing.T) {
	store := kv.NewMemoryStore()

	_, err := store.Get(context.Background(), "works:id:zzzz")
	require.Error(t, err)
	assert.True(t, kv.IsNotFound(err))
}

/*
TestMemoryStore_PutOverwrites verifies Put is a full overwrite and the
write counter tracks every rewrite of the same key.
*/
func TestMemoryStore_PutOverwrites(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "works:all", `[]`))
	require.NoError(t, store.Put(ctx, "works:all", `[{"id":"a1b2c3d4"}]`))

	value, err := store.Get(ctx, "works:all")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a1b2c3d4"}]`, value)
	assert.Equal(t, 2, store.PutCount("works:all"))
	assert.Equal(t, 1, store.Len())
}
