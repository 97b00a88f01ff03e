package calories

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-1"

func newTestEntry(date string, calories int, mealType MealType) CalorieEntry {
	return CalorieEntry{
		Date:        date,
		Calories:    calories,
		MealType:    mealType,
		Description: gofakeit.Dinner(),
		Timestamp:   time.Now(),
	}
}

func TestLedger_AddEntry(t *testing.T) {
	ledger := NewLedger(NewTestStore())
	ctx := context.Background()

	added, err := ledger.AddEntry(ctx, testUserID, newTestEntry("2026-08-31", 450, MealTypeBreakfast))
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, 450, added.Calories)

	entries, err := ledger.Entries(ctx, testUserID, "2026-08-31")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, added.ID, entries[0].ID)

	// invalid entries rejected
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry("2026-08-31", 0, MealTypeLunch))
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry("2026-08-31", 300, "brunch"))
	assert.ErrorIs(t, err, ErrInvalidMealType)
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry("31.08.2026", 300, MealTypeLunch))
	assert.ErrorIs(t, err, ErrInvalidDate)
	noDescription := newTestEntry("2026-08-31", 300, MealTypeLunch)
	noDescription.Description = ""
	_, err = ledger.AddEntry(ctx, testUserID, noDescription)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	// rejected entries never reach the journal
	entries, err = ledger.Entries(ctx, testUserID, "2026-08-31")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedger_Summary(t *testing.T) {
	ledger := NewLedger(NewTestStore())
	ctx := context.Background()

	day := "2026-08-31"
	_, err := ledger.AddEntry(ctx, testUserID, newTestEntry(day, 400, MealTypeBreakfast))
	require.NoError(t, err)
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry(day, 600, MealTypeLunch))
	require.NoError(t, err)
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry(day, 400, MealTypeDinner))
	require.NoError(t, err)
	// other days stay out of the summary
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry("2026-09-01", 500, MealTypeBreakfast))
	require.NoError(t, err)

	summary, err := ledger.Summary(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 1400, summary.TotalCalories)
	assert.Equal(t, DefaultDailyCalorieGoal, summary.Goal)
	assert.Equal(t, 600, summary.Remaining)
	assert.Len(t, summary.Entries, 3)

	// summary is a pure read
	summaryAgain, err := ledger.Summary(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, summary, summaryAgain)

	// over-goal days go negative
	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry(day, 800, MealTypeSnack))
	require.NoError(t, err)
	summary, err = ledger.Summary(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 2200, summary.TotalCalories)
	assert.Equal(t, -200, summary.Remaining)
}

func TestLedger_RemoveEntry(t *testing.T) {
	ledger := NewLedger(NewTestStore())
	ctx := context.Background()

	added, err := ledger.AddEntry(ctx, testUserID, newTestEntry("2026-08-31", 450, MealTypeBreakfast))
	require.NoError(t, err)

	// unknown id, silent no-op
	require.NoError(t, ledger.RemoveEntry(ctx, testUserID, "no-such-id"))
	entries, err := ledger.Entries(ctx, testUserID, "2026-08-31")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, ledger.RemoveEntry(ctx, testUserID, added.ID))
	entries, err = ledger.Entries(ctx, testUserID, "2026-08-31")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_UpdateEntry(t *testing.T) {
	ledger := NewLedger(NewTestStore())
	ctx := context.Background()

	added, err := ledger.AddEntry(ctx, testUserID, newTestEntry("2026-08-31", 450, MealTypeBreakfast))
	require.NoError(t, err)

	newCalories := 500
	newMealType := MealTypeSnack
	require.NoError(t, ledger.UpdateEntry(ctx, testUserID, added.ID, EntryUpdate{
		Calories: &newCalories,
		MealType: &newMealType,
	}))

	entries, err := ledger.Entries(ctx, testUserID, "2026-08-31")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 500, entries[0].Calories)
	assert.Equal(t, MealTypeSnack, entries[0].MealType)
	// untouched fields kept
	assert.Equal(t, added.Date, entries[0].Date)

	// unknown id, silent no-op
	require.NoError(t, ledger.UpdateEntry(ctx, testUserID, "no-such-id", EntryUpdate{
		Calories: &newCalories,
	}))

	badCalories := -10
	assert.ErrorIs(t, ledger.UpdateEntry(ctx, testUserID, added.ID, EntryUpdate{
		Calories: &badCalories,
	}), ErrInvalidEntry)
}

func TestLedger_Goals(t *testing.T) {
	ledger := NewLedger(NewTestStore())
	ctx := context.Background()

	goals, err := ledger.Goals(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, DefaultDailyCalorieGoal, goals.DailyCalorieGoal)
	assert.Equal(t, DefaultWeeklyCalorieGoal, goals.WeeklyCalorieGoal)

	newDaily := 1800
	updated, err := ledger.UpdateGoals(ctx, testUserID, GoalsUpdate{DailyCalorieGoal: &newDaily})
	require.NoError(t, err)
	assert.Equal(t, 1800, updated.DailyCalorieGoal)
	assert.Equal(t, DefaultWeeklyCalorieGoal, updated.WeeklyCalorieGoal)

	badGoal := 0
	_, err = ledger.UpdateGoals(ctx, testUserID, GoalsUpdate{WeeklyCalorieGoal: &badGoal})
	assert.ErrorIs(t, err, ErrInvalidGoal)

	summary, err := ledger.Summary(ctx, testUserID, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 1800, summary.Goal)
	assert.Equal(t, 1800, summary.Remaining)
}

func TestLedger_StoreFailureRollsBack(t *testing.T) {
	store := NewTestStore()
	ledger := NewLedger(store)
	ctx := context.Background()

	day := "2026-08-31"
	_, err := ledger.AddEntry(ctx, testUserID, newTestEntry(day, 400, MealTypeBreakfast))
	require.NoError(t, err)

	store.SetErr = errTestStoreSet

	_, err = ledger.AddEntry(ctx, testUserID, newTestEntry(day, 600, MealTypeLunch))
	require.Error(t, err)

	newDaily := 2500
	_, err = ledger.UpdateGoals(ctx, testUserID, GoalsUpdate{DailyCalorieGoal: &newDaily})
	require.Error(t, err)

	// in-memory state untouched after failed writes
	summary, err := ledger.Summary(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 400, summary.TotalCalories)
	assert.Equal(t, DefaultDailyCalorieGoal, summary.Goal)
	assert.Len(t, summary.Entries, 1)
}

func TestLedger_PerUserIsolation(t *testing.T) {
	ledger := NewLedger(NewTestStore())
	ctx := context.Background()

	day := "2026-08-31"
	_, err := ledger.AddEntry(ctx, "user-1", newTestEntry(day, 400, MealTypeBreakfast))
	require.NoError(t, err)
	_, err = ledger.AddEntry(ctx, "user-2", newTestEntry(day, 900, MealTypeLunch))
	require.NoError(t, err)

	s1, err := ledger.Summary(ctx, "user-1", day)
	require.NoError(t, err)
	s2, err := ledger.Summary(ctx, "user-2", day)
	require.NoError(t, err)
	assert.Equal(t, 400, s1.TotalCalories)
	assert.Equal(t, 900, s2.TotalCalories)
}
