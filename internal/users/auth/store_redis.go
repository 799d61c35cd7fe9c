// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/tuber/internal/platform/constants"
)

// RedisSessionStore implements [SessionStore] with one key per account.
//
// Keys expire with the refresh token, so an abandoned session cleans itself
// up. The store cannot tell whether the account exists; the service loads
// the account before touching the session.
type RedisSessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed SessionStore.
func NewRedisSessionStore(client redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(accountID string) string {
	return constants.RedisPrefixSession + accountID
}

/*
PersistRefreshToken stores token for the account, replacing any previous one.

Parameters:
  - ctx: context.Context
  - accountID: string
  - token: string

Returns:
  - error: Execution errors
*/
func (store *RedisSessionStore) PersistRefreshToken(ctx context.Context, accountID, token string) error {
	if err := store.client.Set(ctx, sessionKey(accountID), token, store.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// ClearRefreshToken deletes the key. Deleting a missing key succeeds.
func (store *RedisSessionStore) ClearRefreshToken(ctx context.Context, accountID string) error {
	if err := store.client.Del(ctx, sessionKey(accountID)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// RefreshToken returns the stored token, "" when the key is absent or expired.
func (store *RedisSessionStore) RefreshToken(ctx context.Context, accountID string) (string, error) {
	token, err := store.client.Get(ctx, sessionKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return token, nil
}
