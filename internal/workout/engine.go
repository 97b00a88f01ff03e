package workout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrWorkoutInProgress = errors.New("workout already in progress")
	ErrNoActiveWorkout   = errors.New("no active workout")
	ErrPlanNotFound      = errors.New("workout plan not found")
	ErrInvalidExercise   = errors.New("invalid exercise")
)

// Engine runs the workout lifecycle per user: at most one active
// session at a time, completed sessions go into a most-recent-first
// history. The active session lives in memory only, the history is
// written through to the store.
type Engine struct {
	store   Store
	catalog *PlansCatalog

	// ability to inject the clock (for unit and dev testing)
	NowFunc func() time.Time

	mutex     sync.Mutex
	current   map[string]*WorkoutSession
	histories map[string][]WorkoutSession
}

func NewEngine(store Store, catalog *PlansCatalog) *Engine {
	return &Engine{
		store:     store,
		catalog:   catalog,
		NowFunc:   time.Now,
		current:   make(map[string]*WorkoutSession),
		histories: make(map[string][]WorkoutSession),
	}
}

// StartWorkout opens a new active session seeded with the starter
// exercise list. Fails with ErrWorkoutInProgress when the user already
// has one - the active session is never silently replaced. Plan id 0
// means a free session without a catalog plan.
func (e *Engine) StartWorkout(ctx context.Context, userID string, workoutPlanID int) (*WorkoutSession, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "workout.engine.start")
	defer span.End()

	if workoutPlanID != 0 {
		if _, ok := e.catalog.Plan(workoutPlanID); !ok {
			return nil, ErrPlanNotFound
		}
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if _, inProgress := e.current[userID]; inProgress {
		return nil, ErrWorkoutInProgress
	}

	session := &WorkoutSession{
		ID:            uuid.NewString(),
		WorkoutPlanID: workoutPlanID,
		StartedAt:     e.NowFunc(),
		Exercises:     starterExercises(),
	}
	e.current[userID] = session

	log.Debugf("workout started for %s: %s", userID, session.ID)

	sessionCopy := *session
	return &sessionCopy, nil
}

// CurrentSession returns a copy of the active session, or nil when
// there is none.
func (e *Engine) CurrentSession(userID string) *WorkoutSession {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	session, ok := e.current[userID]
	if !ok {
		return nil
	}
	sessionCopy := *session
	return &sessionCopy
}

// AddExercise appends an exercise to the active session. The input id
// is ignored, a fresh one is always assigned.
func (e *Engine) AddExercise(ctx context.Context, userID string, exercise Exercise) (*Exercise, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "workout.engine.addExercise")
	defer span.End()

	if err := validateExercise(exercise); err != nil {
		return nil, err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	session, ok := e.current[userID]
	if !ok {
		return nil, ErrNoActiveWorkout
	}

	exercise.ID = uuid.NewString()
	session.Exercises = append(session.Exercises, exercise)

	return &exercise, nil
}

// UpdateExercise applies the non-nil fields of the update to the
// exercise with the given id. An unknown id is a no-op, not an error.
func (e *Engine) UpdateExercise(ctx context.Context, userID, exerciseID string, update ExerciseUpdate) error {
	_, span := tracing.GlobalTracer.Start(ctx, "workout.engine.updateExercise")
	defer span.End()

	if err := validateExerciseUpdate(update); err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	session, ok := e.current[userID]
	if !ok {
		return ErrNoActiveWorkout
	}

	for i := range session.Exercises {
		if session.Exercises[i].ID != exerciseID {
			continue
		}
		applyExerciseUpdate(&session.Exercises[i], update)
		return nil
	}

	return nil
}

// RemoveExercise deletes the exercise with the given id from the
// active session. An unknown id is a no-op, not an error.
func (e *Engine) RemoveExercise(ctx context.Context, userID, exerciseID string) error {
	_, span := tracing.GlobalTracer.Start(ctx, "workout.engine.removeExercise")
	defer span.End()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	session, ok := e.current[userID]
	if !ok {
		return ErrNoActiveWorkout
	}

	for i := range session.Exercises {
		if session.Exercises[i].ID == exerciseID {
			session.Exercises = append(session.Exercises[:i], session.Exercises[i+1:]...)
			return nil
		}
	}

	return nil
}

// CompleteParams are the caller-supplied final values, zero means
// "compute for me".
type CompleteParams struct {
	DurationMinutes int `json:"durationMinutes,omitempty"`
	CaloriesBurned  int `json:"caloriesBurned,omitempty"`
}

// CompleteWorkout finalizes the active session and moves it to the
// head of the history. Duration defaults to the wall-clock elapsed
// time in whole minutes (at least 1), calories burned to a simple
// per-set heuristic - an estimate, not a physiological model.
func (e *Engine) CompleteWorkout(ctx context.Context, userID string, params CompleteParams) (*WorkoutSession, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.engine.complete")
	defer span.End()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	session, ok := e.current[userID]
	if !ok {
		return nil, ErrNoActiveWorkout
	}

	history, err := e.historyFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.NowFunc()
	completed := *session
	completed.Completed = true
	completed.CompletedAt = &now

	completed.DurationMinutes = params.DurationMinutes
	if completed.DurationMinutes == 0 {
		elapsedMinutes := int(now.Sub(session.StartedAt).Minutes())
		if elapsedMinutes < 1 {
			elapsedMinutes = 1
		}
		completed.DurationMinutes = elapsedMinutes
	}

	completed.CaloriesBurned = params.CaloriesBurned
	if completed.CaloriesBurned == 0 {
		completed.CaloriesBurned = estimateCaloriesBurned(completed.Exercises)
	}

	newHistory := append([]WorkoutSession{completed}, history...)
	if err := e.store.SetHistory(ctx, userID, newHistory); err != nil {
		return nil, fmt.Errorf("persist workout history: %w", err)
	}

	e.histories[userID] = newHistory
	delete(e.current, userID)

	log.Debugf(
		"workout completed for %s: %s [%d min, %d kcal]",
		userID, completed.ID, completed.DurationMinutes, completed.CaloriesBurned,
	)

	return &completed, nil
}

// History returns the completed sessions, most recent first.
func (e *Engine) History(ctx context.Context, userID string) ([]WorkoutSession, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.engine.history")
	defer span.End()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	history, err := e.historyFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	historyCopy := make([]WorkoutSession, len(history))
	copy(historyCopy, history)
	return historyCopy, nil
}

// historyFor returns the in-memory history for the user, loading it
// from the store on first use. Caller must hold the mutex.
func (e *Engine) historyFor(ctx context.Context, userID string) ([]WorkoutSession, error) {
	if history, ok := e.histories[userID]; ok {
		return history, nil
	}

	history, err := e.store.GetHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load workout history: %w", err)
	}
	if history == nil {
		history = []WorkoutSession{}
	}

	e.histories[userID] = history
	return history, nil
}

// estimateCaloriesBurned: floor of sets * reps * weight / 10 summed
// over all exercises, with reps and weight defaulting to 1 when absent.
func estimateCaloriesBurned(exercises []Exercise) int {
	total := 0.0
	for _, ex := range exercises {
		reps := 1.0
		if ex.Reps != nil {
			reps = float64(*ex.Reps)
		}
		weight := 1.0
		if ex.Weight != nil {
			weight = *ex.Weight
		}
		total += float64(ex.Sets) * reps * weight * 0.1
	}
	return int(math.Floor(total))
}

func validateExercise(exercise Exercise) error {
	if exercise.Name == "" || exercise.Sets <= 0 || exercise.RestSeconds < 0 {
		return ErrInvalidExercise
	}
	if exercise.Reps != nil && *exercise.Reps <= 0 {
		return ErrInvalidExercise
	}
	if exercise.Weight != nil && *exercise.Weight <= 0 {
		return ErrInvalidExercise
	}
	if exercise.DurationSeconds != nil && *exercise.DurationSeconds <= 0 {
		return ErrInvalidExercise
	}
	return nil
}

func validateExerciseUpdate(update ExerciseUpdate) error {
	if update.Name != nil && *update.Name == "" {
		return ErrInvalidExercise
	}
	if update.Sets != nil && *update.Sets <= 0 {
		return ErrInvalidExercise
	}
	if update.Reps != nil && *update.Reps <= 0 {
		return ErrInvalidExercise
	}
	if update.Weight != nil && *update.Weight <= 0 {
		return ErrInvalidExercise
	}
	if update.DurationSeconds != nil && *update.DurationSeconds <= 0 {
		return ErrInvalidExercise
	}
	if update.RestSeconds != nil && *update.RestSeconds < 0 {
		return ErrInvalidExercise
	}
	return nil
}

func applyExerciseUpdate(exercise *Exercise, update ExerciseUpdate) {
	if update.Name != nil {
		exercise.Name = *update.Name
	}
	if update.Sets != nil {
		exercise.Sets = *update.Sets
	}
	if update.Reps != nil {
		exercise.Reps = update.Reps
	}
	if update.Weight != nil {
		exercise.Weight = update.Weight
	}
	if update.DurationSeconds != nil {
		exercise.DurationSeconds = update.DurationSeconds
	}
	if update.RestSeconds != nil {
		exercise.RestSeconds = *update.RestSeconds
	}
	if update.Notes != nil {
		exercise.Notes = *update.Notes
	}
}
