package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const profileKeyPrefix = "fittrack-profile||"

type Store interface {
	// Get returns the persisted profile for the user, or nil when the
	// user has not saved one yet - a legitimate state, not an error.
	Get(ctx context.Context, userID string) (*UserProfile, error)
	Set(ctx context.Context, userID string, profile UserProfile) error
}

type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.store.get")
	defer span.End()

	profileJson, err := s.redisClient.Get(ctx, profileKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile UserProfile
	if err := json.Unmarshal([]byte(profileJson), &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	return &profile, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, profile UserProfile) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.store.set")
	defer span.End()

	profileJson, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if err := s.redisClient.Set(ctx, profileKeyPrefix+userID, profileJson, 0).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}

	return nil
}

// TestStore is an in-memory Store used in unit and dev testing.
type TestStore struct {
	mutex    sync.Mutex
	profiles map[string]UserProfile

	// SetErr, when set, is returned by every Set call
	SetErr error
}

func NewTestStore() *TestStore {
	return &TestStore{
		profiles: make(map[string]UserProfile),
	}
}

func (s *TestStore) Get(_ context.Context, userID string) (*UserProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (s *TestStore) Set(_ context.Context, userID string, profile UserProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}

	s.profiles[userID] = profile
	return nil
}
