// Copyright (c) 2026 Atelier. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/sec"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements the account use cases.
//
// Any change to hashing, registration or login logic is security-sensitive.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
}

// NewService constructs the auth service.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
	}
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// Register validates, hashes, and persists a brand new user account.
//
// # Business Rules
//   - Emails and usernames must be unique.
//   - Default role is always 'member'; artist profiles are granted
//     separately via [Service.PromoteRole].
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {

	// ── 1. Uniqueness checks ──────────────────────────────────────────────
	if _, err := service.userRepository.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	if _, err := service.userRepository.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// ── 2. Security ───────────────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity construction ────────────────────────────────────────────
	user := &User{
		ID:           newID(), // Time-sortable to prevent PG index fragmentation.
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleMember,
		IsVerified:   false,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Username or email.
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// Login validates credentials and issues an access/refresh token pair.
//
// # Flow
//  1. Lookup user by login (email or username).
//  2. Verify password hash.
//  3. Issue a short-lived JWT and a long-lived refresh session.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {

	// ── 1. Fetch user ─────────────────────────────────────────────────────
	user, err := service.userRepository.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(ctx, input.Login)
	}

	// Generic message so the response never confirms which half was wrong.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Verify password ────────────────────────────────────────────────
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Issue tokens ───────────────────────────────────────────────────
	return service.issueSession(ctx, user, input.UserAgent, input.IPAddress)
}

// Logout permanently revokes the session behind refreshToken. Logging out an
// already-invalid token succeeds (idempotent).
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := sec.HashToken(refreshToken)
	if _, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash); err != nil {
		return nil
	}

	if err := service.sessionRepository.Revoke(ctx, tokenHash); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// RefreshSession implements refresh-token rotation: the presented token is
// verified, revoked to prevent replay, and a fresh pair is issued.
func (service *Service) RefreshSession(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// ── 1. Find existing session ──────────────────────────────────────────
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Rotation (revoke old session) ──────────────────────────────────
	if err := service.sessionRepository.Revoke(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// ── 3. Find user ──────────────────────────────────────────────────────
	user, err := service.userRepository.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	// ── 4. Issue new tokens ───────────────────────────────────────────────
	return service.issueSession(ctx, user, userAgent, ipAddress)
}

// PromoteRole grants a different role to an account. Admin only; the admin
// role itself can only be assigned out of band.
func (service *Service) PromoteRole(ctx context.Context, userID string, role sec.UserRole, caller *sec.AuthClaims) error {
	if caller == nil || sec.UserRole(caller.Role) != sec.RoleAdmin {
		return apperr.Forbidden("Role management requires admin privileges")
	}
	if role != sec.RoleMember && role != sec.RoleArtist && role != sec.RoleModerator {
		return apperr.BadRequest("Unknown or unassignable role")
	}

	if _, err := service.userRepository.FindByID(ctx, userID); err != nil {
		return err
	}

	if err := service.userRepository.PromoteRole(ctx, userID, string(role)); err != nil {
		return fmt.Errorf("auth_service_promote_failed: %w", err)
	}
	return nil
}

// issueSession creates the access/refresh pair and persists the session.
func (service *Service) issueSession(ctx context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(refreshTokenTTL)
	session := &Session{
		ID:        newID(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}

	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// newID returns a time-sortable UUIDv7, falling back to v4 when the clock
// source misbehaves.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
