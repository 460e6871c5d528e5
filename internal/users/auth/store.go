// Copyright (c) 2026 Atelier. All rights reserved.

package auth

import (
	"context"
)

// UserRepository defines the data access contract for user accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go); accounts
// stay relational so the email/username uniqueness constraints are enforced
// by the database rather than by racy read-then-write checks.
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account.
	//
	// Returns a wrapped error if a unique constraint (email/username) fails.
	Create(ctx context.Context, user *User) error

	// PromoteRole raises the account's role. Used when a member is granted
	// an artist profile or staff privileges.
	PromoteRole(ctx context.Context, userID string, role string) error
}

// SessionRepository defines the data access contract for refresh-token
// sessions.
//
// # Implementations
//
// The canonical implementation is Redis (store_redis.go): sessions are
// volatile, keyed by token hash and expire automatically with a TTL, so
// there is no expired-session sweep to run.
type SessionRepository interface {
	// Create persists a new session for an authenticated login.
	Create(ctx context.Context, session *Session) error

	// FindByTokenHash returns the active session matching the token hash.
	//
	// Returns [apperr.NotFound] if the session is invalid or expired.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke permanently invalidates the session stored under tokenHash.
	Revoke(ctx context.Context, tokenHash string) error
}
