package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mlukic/fittrack/internal/nutrition"
	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

var (
	ErrMissingRequiredField = errors.New("missing required profile field")
	ErrInvalidProfileField  = errors.New("invalid profile field")
)

// Manager owns the per-user profile records. Every save goes through
// one path: validate, recompute all derived nutrition fields, persist,
// then swap the in-memory record - readers never see base fields
// updated with stale derived ones.
type Manager struct {
	store Store

	// ability to inject the clock (for unit and dev testing)
	NowFunc func() time.Time

	mutex    sync.Mutex
	profiles map[string]*UserProfile
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		NowFunc:  time.Now,
		profiles: make(map[string]*UserProfile),
	}
}

// Get returns the user's profile, or nil when none was saved yet.
func (m *Manager) Get(ctx context.Context, userID string) (*UserProfile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.manager.get")
	defer span.End()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if profile, ok := m.profiles[userID]; ok {
		profileCopy := *profile
		return &profileCopy, nil
	}

	profile, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	m.profiles[userID] = profile
	profileCopy := *profile
	return &profileCopy, nil
}

// Update validates the submitted form, rebuilds the full profile
// record with freshly derived nutrition fields and persists it.
func (m *Manager) Update(ctx context.Context, userID string, form FormData) (*UserProfile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.manager.update")
	defer span.End()

	if err := validateForm(form); err != nil {
		return nil, err
	}

	now := m.NowFunc()
	goals := nutrition.CalculateGoals(nutrition.GoalsParams{
		WeightKg:      form.WeightKg,
		HeightCm:      form.HeightCm,
		DateOfBirth:   form.DateOfBirth,
		Gender:        form.Gender,
		ActivityLevel: form.ActivityLevel,
		GoalType:      form.GoalType,
	}, now)

	// the calculator can produce a negative carbs target for extreme
	// inputs, the stored profile clamps it at zero
	carbsGoal := goals.DailyCarbsGoal
	if carbsGoal < 0 {
		carbsGoal = 0
	}

	profile := &UserProfile{
		Name:          form.Name,
		Email:         form.Email,
		DateOfBirth:   form.DateOfBirth,
		HeightCm:      form.HeightCm,
		WeightKg:      form.WeightKg,
		Gender:        form.Gender,
		BuildType:     form.BuildType,
		ActivityLevel: form.ActivityLevel,
		GoalType:      form.GoalType,
		TargetWeight:  form.TargetWeight,
		WeeklyRate:    form.WeeklyRate,

		DietaryRestrictions:  form.DietaryRestrictions,
		Allergies:            form.Allergies,
		MedicalConditions:    form.MedicalConditions,
		PreferredWorkoutDays: form.PreferredWorkoutDays,

		BMI:              goals.BMI,
		BMR:              goals.BMR,
		TDEE:             goals.TDEE,
		DailyCalorieGoal: goals.DailyCalorieGoal,
		DailyProteinGoal: goals.DailyProteinGoal,
		DailyCarbsGoal:   carbsGoal,
		DailyFatGoal:     goals.DailyFatGoal,

		UpdatedAt: now,
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.store.Set(ctx, userID, *profile); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}

	m.profiles[userID] = profile
	log.Debugf("profile updated for %s: %d kcal daily goal", userID, profile.DailyCalorieGoal)

	profileCopy := *profile
	return &profileCopy, nil
}

func validateForm(form FormData) error {
	if form.Name == "" || form.Email == "" || form.DateOfBirth.IsZero() {
		return ErrMissingRequiredField
	}
	if form.HeightCm <= 0 || form.WeightKg <= 0 {
		return ErrMissingRequiredField
	}
	if !form.Gender.IsValid() {
		return ErrInvalidProfileField
	}
	if !form.ActivityLevel.IsValid() {
		return ErrInvalidProfileField
	}
	if !form.GoalType.IsValid() {
		return ErrInvalidProfileField
	}
	if form.BuildType != "" && !form.BuildType.IsValid() {
		return ErrInvalidProfileField
	}
	if form.TargetWeight != nil && *form.TargetWeight <= 0 {
		return ErrInvalidProfileField
	}
	if form.WeeklyRate != nil && *form.WeeklyRate <= 0 {
		return ErrInvalidProfileField
	}
	return nil
}
