// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// # Course Cache

// RedisCourseCache implements [CourseCache] using Redis.
//
// Entries are written without expiry under course:<id> and course:all.
type RedisCourseCache struct {
	client *redis.Client
}

// NewCourseCache creates a new Redis-backed CourseCache.
func NewCourseCache(client *redis.Client) *RedisCourseCache {
	return &RedisCourseCache{client: client}
}

// Get implements [CourseCache].
func (cache *RedisCourseCache) Get(context context.Context, key string, target any) error {
	payload, err := cache.client.Get(context, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis_course_get_failed: %w", err)
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("redis_course_decode_failed: %w", err)
	}
	return nil
}

// Set implements [CourseCache].
func (cache *RedisCourseCache) Set(context context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis_course_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis_course_set_failed: %w", err)
	}
	return nil
}
