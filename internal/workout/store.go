package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const historyKeyPrefix = "fittrack-workouts||"

//go:generate mockgen -source=store.go -destination=store_mocks_test.go -package=workout

// Store persists the completed-sessions history. The current session
// is memory only and does not survive a restart.
type Store interface {
	// GetHistory returns the persisted history, most recent first,
	// or nil when the user has no completed workouts yet.
	GetHistory(ctx context.Context, userID string) ([]WorkoutSession, error)
	SetHistory(ctx context.Context, userID string, history []WorkoutSession) error
}

type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func (s *RedisStore) GetHistory(ctx context.Context, userID string) ([]WorkoutSession, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.store.getHistory")
	defer span.End()

	historyJson, err := s.redisClient.Get(ctx, historyKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workout history: %w", err)
	}

	var history []WorkoutSession
	if err := json.Unmarshal([]byte(historyJson), &history); err != nil {
		return nil, fmt.Errorf("unmarshal workout history: %w", err)
	}

	return history, nil
}

func (s *RedisStore) SetHistory(ctx context.Context, userID string, history []WorkoutSession) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.store.setHistory")
	defer span.End()

	historyJson, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal workout history: %w", err)
	}

	if err := s.redisClient.Set(ctx, historyKeyPrefix+userID, historyJson, 0).Err(); err != nil {
		return fmt.Errorf("set workout history: %w", err)
	}

	return nil
}

// TestStore is an in-memory Store used in unit and dev testing.
type TestStore struct {
	mutex     sync.Mutex
	histories map[string][]WorkoutSession

	// SetErr, when set, is returned by every SetHistory call
	SetErr error
}

func NewTestStore() *TestStore {
	return &TestStore{
		histories: make(map[string][]WorkoutSession),
	}
}

func (s *TestStore) GetHistory(_ context.Context, userID string) ([]WorkoutSession, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.histories[userID], nil
}

func (s *TestStore) SetHistory(_ context.Context, userID string, history []WorkoutSession) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}

	s.histories[userID] = history
	return nil
}
