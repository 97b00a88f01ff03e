package workout

import (
	"time"

	"github.com/google/uuid"
)

type Exercise struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Sets int    `json:"sets"`
	// Reps and Weight used for rep-based exercises,
	// DurationSeconds for timed ones (e.g. plank)
	Reps            *int     `json:"reps,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	DurationSeconds *int     `json:"durationSeconds,omitempty"`
	RestSeconds     int      `json:"restSeconds"`
	Notes           string   `json:"notes,omitempty"`
}

// ExerciseUpdate carries the changed fields of an exercise, nil means "keep".
type ExerciseUpdate struct {
	Name            *string  `json:"name,omitempty"`
	Sets            *int     `json:"sets,omitempty"`
	Reps            *int     `json:"reps,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	DurationSeconds *int     `json:"durationSeconds,omitempty"`
	RestSeconds     *int     `json:"restSeconds,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

type WorkoutSession struct {
	ID              string     `json:"id"`
	WorkoutPlanID   int        `json:"workoutPlanId,omitempty"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Exercises       []Exercise `json:"exercises"`
	DurationMinutes int        `json:"durationMinutes"`
	CaloriesBurned  int        `json:"caloriesBurned"`
	Completed       bool       `json:"completed"`
}

func intPtr(i int) *int { return &i }

// starterExercises is the seeded exercise list every new session
// begins with.
func starterExercises() []Exercise {
	return []Exercise{
		{
			ID:          uuid.NewString(),
			Name:        "Push-ups",
			Sets:        3,
			Reps:        intPtr(12),
			RestSeconds: 60,
			Notes:       "Focus on form and controlled movement",
		},
		{
			ID:          uuid.NewString(),
			Name:        "Squats",
			Sets:        4,
			Reps:        intPtr(15),
			RestSeconds: 90,
			Notes:       "Keep back straight, go parallel to ground",
		},
		{
			ID:              uuid.NewString(),
			Name:            "Plank",
			Sets:            3,
			DurationSeconds: intPtr(60),
			RestSeconds:     45,
			Notes:           "Maintain straight line from head to heels",
		},
	}
}
