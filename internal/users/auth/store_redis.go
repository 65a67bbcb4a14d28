// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gritsos/gritsos-api/internal/platform/constants"
)

// RedisThrottle implements Throttle with a fixed-window counter per username.
type RedisThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisThrottle creates a new Redis-backed Throttle.
func NewRedisThrottle(client *redis.Client, limit int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, limit: limit, window: window}
}

/*
Allow reports whether another password attempt may be made for username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - bool: false once the failure counter reached the limit
  - time.Duration: Time until the counter expires when not allowed
  - error: Connectivity errors
*/
func (throttle *RedisThrottle) Allow(context context.Context, username string) (bool, time.Duration, error) {
	key := failureKey(username)

	raw, err := throttle.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, 0, nil
		}
		return false, 0, fmt.Errorf("redis_throttle_get_failed: %w", err)
	}

	failures, err := strconv.Atoi(raw)
	if err != nil {
		return false, 0, fmt.Errorf("redis_throttle_counter_invalid: %w", err)
	}

	if failures < throttle.limit {
		return true, 0, nil
	}

	retryAfter, err := throttle.client.TTL(context, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis_throttle_ttl_failed: %w", err)
	}
	if retryAfter < 0 {
		retryAfter = throttle.window
	}

	return false, retryAfter, nil
}

/*
Failure increments the failure counter for username.

Description: The window starts with the first failure; later failures do not
extend it.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - error: Connectivity errors
*/
func (throttle *RedisThrottle) Failure(context context.Context, username string) error {
	key := failureKey(username)

	failures, err := throttle.client.Incr(context, key).Result()
	if err != nil {
		return fmt.Errorf("redis_throttle_incr_failed: %w", err)
	}

	if failures == 1 {
		if err := throttle.client.Expire(context, key, throttle.window).Err(); err != nil {
			return fmt.Errorf("redis_throttle_expire_failed: %w", err)
		}
	}

	return nil
}

/*
Reset clears the failure counter for username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - error: Connectivity errors
*/
func (throttle *RedisThrottle) Reset(context context.Context, username string) error {
	if err := throttle.client.Del(context, failureKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_throttle_reset_failed: %w", err)
	}
	return nil
}

func failureKey(username string) string {
	return constants.RedisPrefixAuthFailures + username
}
