// Copyright (c) 2026 Atelier. All rights reserved.

/*
Package auth implements account management for the Atelier platform:
registration, credential login, refresh-token rotation and logout.

# Architecture

Entities here have no dependencies on outer layers. Accounts are relational
(PostgreSQL) because uniqueness constraints do the heavy lifting; sessions
are volatile and live in Redis with a TTL matching their validity window.

For artists, the account ID doubles as the artistId their works are keyed
under in the gallery indices.
*/
package auth

import (
	"time"

	"github.com/atelierhq/atelier/internal/platform/sec"
)

// User represents a registered member of the Atelier platform.
//
// # Rules
//   - Username is unique and URL-safe.
//   - Email is unique.
//   - PasswordHash is produced exclusively by the auth service via bcrypt.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never serialized.
	DisplayName  string       `json:"displayName"`
	AvatarURL    string       `json:"avatarUrl,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"isVerified"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Session represents an active refresh-token session.
//
// Access tokens are short-lived stateless JWTs; sessions are the revocable
// half of the pair. A session is stored under the hash of its refresh token,
// so the store itself never holds a replayable credential.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
