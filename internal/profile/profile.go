package profile

import (
	"time"

	"github.com/mlukic/fittrack/internal/nutrition"
)

// UserProfile is the single per-user profile record. The derived
// fields are always a pure function of the base fields, recomputed on
// every write - they are never set independently.
type UserProfile struct {
	// base fields
	Name          string                  `json:"name"`
	Email         string                  `json:"email"`
	DateOfBirth   time.Time               `json:"dateOfBirth"`
	HeightCm      float64                 `json:"heightCm"`
	WeightKg      float64                 `json:"weightKg"`
	Gender        nutrition.Gender        `json:"gender"`
	BuildType     nutrition.BuildType     `json:"buildType,omitempty"`
	ActivityLevel nutrition.ActivityLevel `json:"activityLevel"`
	GoalType      nutrition.GoalType      `json:"goalType"`
	TargetWeight  *float64                `json:"targetWeight,omitempty"`
	WeeklyRate    *float64                `json:"weeklyRate,omitempty"`

	DietaryRestrictions  []string `json:"dietaryRestrictions,omitempty"`
	Allergies            []string `json:"allergies,omitempty"`
	MedicalConditions    []string `json:"medicalConditions,omitempty"`
	PreferredWorkoutDays []string `json:"preferredWorkoutDays,omitempty"`

	// derived fields
	BMI              float64 `json:"bmi"`
	BMR              float64 `json:"bmr"`
	TDEE             float64 `json:"tdee"`
	DailyCalorieGoal int     `json:"dailyCalorieGoal"`
	DailyProteinGoal int     `json:"dailyProteinGoal"`
	DailyCarbsGoal   int     `json:"dailyCarbsGoal"`
	DailyFatGoal     int     `json:"dailyFatGoal"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// FormData is the full set of base fields a profile save submits.
type FormData struct {
	Name          string                  `json:"name"`
	Email         string                  `json:"email"`
	DateOfBirth   time.Time               `json:"dateOfBirth"`
	HeightCm      float64                 `json:"heightCm"`
	WeightKg      float64                 `json:"weightKg"`
	Gender        nutrition.Gender        `json:"gender"`
	BuildType     nutrition.BuildType     `json:"buildType,omitempty"`
	ActivityLevel nutrition.ActivityLevel `json:"activityLevel"`
	GoalType      nutrition.GoalType      `json:"goalType"`
	TargetWeight  *float64                `json:"targetWeight,omitempty"`
	WeeklyRate    *float64                `json:"weeklyRate,omitempty"`

	DietaryRestrictions  []string `json:"dietaryRestrictions,omitempty"`
	Allergies            []string `json:"allergies,omitempty"`
	MedicalConditions    []string `json:"medicalConditions,omitempty"`
	PreferredWorkoutDays []string `json:"preferredWorkoutDays,omitempty"`
}
