// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// # Session Cache

// RedisSessionStore implements [SessionStore] using Redis.
//
// Each session is the JSON snapshot of the user under auth:session:<id>.
type RedisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore.
func NewSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(userID string) string {
	return constants.RedisPrefixSession + userID
}

/*
Save stores the snapshot with a fresh expiry window.

Parameters:
  - context: context.Context
  - user: *identity.User
  - ttl: time.Duration

Returns:
  - error: Encoding or execution errors
*/
func (store *RedisSessionStore) Save(context context.Context, user *identity.User, ttl time.Duration) error {
	payload, err := json.Marshal(user.Public())
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := store.client.Set(context, sessionKey(user.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
Replace overwrites a live snapshot and keeps its remaining expiry.

Description: SET with XX and KEEPTTL, so a logged-out user is never
resurrected by a profile edit racing the logout.

Parameters:
  - context: context.Context
  - user: *identity.User

Returns:
  - error: identity.ErrSessionNotFound or execution errors
*/
func (store *RedisSessionStore) Replace(context context.Context, user *identity.User) error {
	payload, err := json.Marshal(user.Public())
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	err = store.client.SetArgs(context, sessionKey(user.ID), payload, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()

	if errors.Is(err, redis.Nil) {
		return identity.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("redis_session_replace_failed: %w", err)
	}
	return nil
}

/*
Get retrieves the snapshot for userID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *identity.User: Cached snapshot
  - error: identity.ErrSessionNotFound or connectivity errors
*/
func (store *RedisSessionStore) Get(context context.Context, userID string) (*identity.User, error) {
	payload, err := store.client.Get(context, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, identity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	user := &identity.User{}
	if err := json.Unmarshal(payload, user); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}
	return user, nil
}

// Delete removes the snapshot.
func (store *RedisSessionStore) Delete(context context.Context, userID string) error {
	if err := store.client.Del(context, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
