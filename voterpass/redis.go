// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voterpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/quickly-elect/auth"
)

const passKeyPrefix = "voterpass:"

// RedisStore keeps passes in Redis so every server instance sees them.
// Redis key expiry implements the inactivity window; GETEX slides it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if err := validateTTL(ttl); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}, nil
}

// NewRedisClient connects to url and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Issue(ctx context.Context, voterID, sessionID string) (*Pass, error) {
	token, err := auth.GenerateVoterToken()
	if err != nil {
		return nil, err
	}

	pass := Pass{Token: token, VoterID: voterID, SessionID: sessionID}
	value, err := json.Marshal(pass)
	if err != nil {
		return nil, fmt.Errorf("encode voter pass: %w", err)
	}

	if err := r.client.Set(ctx, passKeyPrefix+token, value, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store voter pass: %w", err)
	}
	pass.ExpiresAt = r.now().Add(r.ttl)
	return &pass, nil
}

func (r *RedisStore) Resolve(ctx context.Context, token string) (*Pass, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	value, err := r.client.GetEx(ctx, passKeyPrefix+token, r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load voter pass: %w", err)
	}

	var pass Pass
	if err := json.Unmarshal(value, &pass); err != nil {
		return nil, fmt.Errorf("decode voter pass: %w", err)
	}
	pass.Token = token
	pass.ExpiresAt = r.now().Add(r.ttl)
	return &pass, nil
}

func (r *RedisStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.client.Del(ctx, passKeyPrefix+token).Err()
}
