package calories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const ledgerKeyPrefix = "fittrack-calories||"

// LedgerState is the whole per-user ledger as persisted: the full list
// of entries plus the calorie goals.
type LedgerState struct {
	Entries []CalorieEntry `json:"entries"`
	Goals   Goals          `json:"goals"`
}

type Store interface {
	// Get returns the persisted ledger state for the user,
	// or nil when the user has no ledger yet.
	Get(ctx context.Context, userID string) (*LedgerState, error)
	Set(ctx context.Context, userID string, state LedgerState) error
}

type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*LedgerState, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.store.get")
	defer span.End()

	stateJson, err := s.redisClient.Get(ctx, ledgerKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger state: %w", err)
	}

	var state LedgerState
	if err := json.Unmarshal([]byte(stateJson), &state); err != nil {
		return nil, fmt.Errorf("unmarshal ledger state: %w", err)
	}

	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, state LedgerState) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.store.set")
	defer span.End()

	stateJson, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal ledger state: %w", err)
	}

	if err := s.redisClient.Set(ctx, ledgerKeyPrefix+userID, stateJson, 0).Err(); err != nil {
		return fmt.Errorf("set ledger state: %w", err)
	}

	return nil
}
