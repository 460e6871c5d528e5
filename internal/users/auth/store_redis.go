// Copyright (c) 2026 Atelier. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/constants"
)

// RedisSessionRepository implements [SessionRepository] on Redis.
//
// Sessions are stored under their token hash with a TTL matching the
// refresh window, so expiry is enforced by the store itself — an expired
// session simply stops existing; there is no cleanup job.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates the Redis implementation of SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

// Create stores the session under its token hash, expiring at ExpiresAt.
func (repository *RedisSessionRepository) Create(ctx context.Context, session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis_session_repo_create_failed: session already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_repo_marshal_failed: %w", err)
	}

	if err := repository.client.Set(ctx, sessionKey(session.TokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_repo_create_failed: %w", err)
	}
	return nil
}

// FindByTokenHash returns the session stored under tokenHash.
func (repository *RedisSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	raw, err := repository.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_repo_find_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal([]byte(raw), session); err != nil {
		return nil, fmt.Errorf("redis_session_repo_unmarshal_failed: %w", err)
	}
	session.TokenHash = tokenHash
	return session, nil
}

// Revoke deletes the session stored under tokenHash. Deleting an absent
// session is not an error.
func (repository *RedisSessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	if err := repository.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_repo_revoke_failed: %w", err)
	}
	return nil
}
