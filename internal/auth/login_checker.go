package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// Session returns the login session for the given token, or
// ErrSessionNotFound when the token is unknown or expired.
func (c *LoginChecker) Session(ctx context.Context, token string) (*LoginSession, error) {
	sessionJson, err := c.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session LoginSession
	if err := json.Unmarshal([]byte(sessionJson), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	if time.Since(session.CreatedAt) > c.ttl {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	_, err := c.Session(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
