// Copyright (c) 2026 Atelier. All rights reserved.

package ctxutil_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/platform/ctxutil"
	"github.com/atelierhq/atelier/internal/platform/sec"
)

/*
TestRequestID_RoundTrip verifies that a request ID survives a context round trip.
*/
func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

/*
TestLogger_FallsBackToDefault verifies the default logger is returned when
no per-request logger was injected.
*/
func TestLogger_FallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	logger := ctxutil.GetLogger(ctx)
	require.NotNil(t, logger)
	assert.Equal(t, slog.Default(), logger)

	custom := slog.Default().With(slog.String("scope", "test"))
	ctx = ctxutil.WithLogger(ctx, custom)
	assert.Equal(t, custom, ctxutil.GetLogger(ctx))
}

/*
TestAuthUser_AnonymousIsNil verifies anonymous contexts yield nil claims.
*/
func TestAuthUser_AnonymousIsNil(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	claims := &sec.AuthClaims{UserID: "disc123", Role: string(sec.RoleArtist)}
	ctx = ctxutil.WithAuthUser(ctx, claims)

	got := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "disc123", got.UserID)
	assert.False(t, got.IsStaff())
}
