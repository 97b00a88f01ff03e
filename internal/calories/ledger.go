package calories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidEntry    = errors.New("invalid calorie entry")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidGoal     = errors.New("invalid calorie goal")
	ErrInvalidMealType = errors.New("invalid meal type")
)

// Ledger keeps a per-user calorie journal. State is held in memory and
// written through to the store on every mutation: the in-memory state
// only changes after the store write succeeds.
type Ledger struct {
	store Store

	mutex  sync.Mutex
	states map[string]*LedgerState
}

func NewLedger(store Store) *Ledger {
	return &Ledger{
		store:  store,
		states: make(map[string]*LedgerState),
	}
}

// stateFor returns the in-memory ledger state for the user, loading it
// from the store (or creating a fresh one) on first use.
// Caller must hold the mutex.
func (l *Ledger) stateFor(ctx context.Context, userID string) (*LedgerState, error) {
	if state, ok := l.states[userID]; ok {
		return state, nil
	}

	state, err := l.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}
	if state == nil {
		state = &LedgerState{
			Goals: Goals{
				DailyCalorieGoal:  DefaultDailyCalorieGoal,
				WeeklyCalorieGoal: DefaultWeeklyCalorieGoal,
			},
		}
	}

	l.states[userID] = state
	return state, nil
}

func (l *Ledger) AddEntry(ctx context.Context, userID string, entry CalorieEntry) (*CalorieEntry, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.ledger.addEntry")
	defer span.End()

	if entry.Calories <= 0 || entry.Description == "" {
		return nil, ErrInvalidEntry
	}
	if !entry.MealType.IsValid() {
		return nil, ErrInvalidMealType
	}
	if _, err := time.Parse(DateLayout, entry.Date); err != nil {
		return nil, ErrInvalidDate
	}

	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, err := l.stateFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	newState := LedgerState{
		Entries: append(append([]CalorieEntry{}, state.Entries...), entry),
		Goals:   state.Goals,
	}
	if err := l.store.Set(ctx, userID, newState); err != nil {
		return nil, fmt.Errorf("persist ledger state: %w", err)
	}

	*state = newState
	log.Debugf("calorie entry added for %s: %d kcal [%s]", userID, entry.Calories, entry.MealType)

	return &entry, nil
}

// RemoveEntry deletes the entry with the given id. An unknown id is a
// no-op, not an error.
func (l *Ledger) RemoveEntry(ctx context.Context, userID, entryID string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.ledger.removeEntry")
	defer span.End()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, err := l.stateFor(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	remaining := make([]CalorieEntry, 0, len(state.Entries))
	for _, e := range state.Entries {
		if e.ID == entryID {
			found = true
			continue
		}
		remaining = append(remaining, e)
	}
	if !found {
		return nil
	}

	newState := LedgerState{
		Entries: remaining,
		Goals:   state.Goals,
	}
	if err := l.store.Set(ctx, userID, newState); err != nil {
		return fmt.Errorf("persist ledger state: %w", err)
	}

	*state = newState
	return nil
}

// UpdateEntry applies the non-nil fields of the update to the entry
// with the given id. An unknown id is a no-op, not an error.
func (l *Ledger) UpdateEntry(ctx context.Context, userID, entryID string, update EntryUpdate) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.ledger.updateEntry")
	defer span.End()

	if update.Calories != nil && *update.Calories <= 0 {
		return ErrInvalidEntry
	}
	if update.Description != nil && *update.Description == "" {
		return ErrInvalidEntry
	}
	if update.MealType != nil && !update.MealType.IsValid() {
		return ErrInvalidMealType
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, err := l.stateFor(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	entries := make([]CalorieEntry, len(state.Entries))
	copy(entries, state.Entries)
	for i := range entries {
		if entries[i].ID != entryID {
			continue
		}
		found = true
		if update.Calories != nil {
			entries[i].Calories = *update.Calories
		}
		if update.MealType != nil {
			entries[i].MealType = *update.MealType
		}
		if update.Description != nil {
			entries[i].Description = *update.Description
		}
		break
	}
	if !found {
		return nil
	}

	newState := LedgerState{
		Entries: entries,
		Goals:   state.Goals,
	}
	if err := l.store.Set(ctx, userID, newState); err != nil {
		return fmt.Errorf("persist ledger state: %w", err)
	}

	*state = newState
	return nil
}

// Entries returns the entries for the given day, in insertion order.
func (l *Ledger) Entries(ctx context.Context, userID, date string) ([]CalorieEntry, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, err := l.stateFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]CalorieEntry, 0)
	for _, e := range state.Entries {
		if e.Date == date {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Summary computes the daily totals for the given day. It is a pure
// read, ledger state never changes.
func (l *Ledger) Summary(ctx context.Context, userID, date string) (*DailySummary, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.ledger.summary")
	defer span.End()

	entries, err := l.Entries(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	l.mutex.Lock()
	goal := l.states[userID].Goals.DailyCalorieGoal
	l.mutex.Unlock()

	total := 0
	for _, e := range entries {
		total += e.Calories
	}

	return &DailySummary{
		Date:          date,
		TotalCalories: total,
		Goal:          goal,
		Remaining:     goal - total,
		Entries:       entries,
	}, nil
}

func (l *Ledger) Goals(ctx context.Context, userID string) (*Goals, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, err := l.stateFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	goals := state.Goals
	return &goals, nil
}

// UpdateGoals applies the non-nil fields of the update to the goals.
func (l *Ledger) UpdateGoals(ctx context.Context, userID string, update GoalsUpdate) (*Goals, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calories.ledger.updateGoals")
	defer span.End()

	if update.DailyCalorieGoal != nil && *update.DailyCalorieGoal <= 0 {
		return nil, ErrInvalidGoal
	}
	if update.WeeklyCalorieGoal != nil && *update.WeeklyCalorieGoal <= 0 {
		return nil, ErrInvalidGoal
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, err := l.stateFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	newGoals := state.Goals
	if update.DailyCalorieGoal != nil {
		newGoals.DailyCalorieGoal = *update.DailyCalorieGoal
	}
	if update.WeeklyCalorieGoal != nil {
		newGoals.WeeklyCalorieGoal = *update.WeeklyCalorieGoal
	}

	newState := LedgerState{
		Entries: state.Entries,
		Goals:   newGoals,
	}
	if err := l.store.Set(ctx, userID, newState); err != nil {
		return nil, fmt.Errorf("persist ledger state: %w", err)
	}

	*state = newState
	return &newGoals, nil
}
