package calories

import "time"

const (
	DefaultDailyCalorieGoal  = 2000
	DefaultWeeklyCalorieGoal = 14000

	// DateLayout is the day key format used by the ledger
	DateLayout = "2006-01-02"
)

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

func (mt MealType) IsValid() bool {
	switch mt {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	default:
		return false
	}
}

type CalorieEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Calories    int       `json:"calories"`
	MealType    MealType  `json:"mealType"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// EntryUpdate carries the changed fields of an entry, nil means "keep".
type EntryUpdate struct {
	Calories    *int      `json:"calories,omitempty"`
	MealType    *MealType `json:"mealType,omitempty"`
	Description *string   `json:"description,omitempty"`
}

type Goals struct {
	DailyCalorieGoal  int `json:"dailyCalorieGoal"`
	WeeklyCalorieGoal int `json:"weeklyCalorieGoal"`
}

type GoalsUpdate struct {
	DailyCalorieGoal  *int `json:"dailyCalorieGoal,omitempty"`
	WeeklyCalorieGoal *int `json:"weeklyCalorieGoal,omitempty"`
}

type DailySummary struct {
	Date          string         `json:"date"`
	TotalCalories int            `json:"totalCalories"`
	Goal          int            `json:"goal"`
	Remaining     int            `json:"remaining"`
	Entries       []CalorieEntry `json:"entries"`
}
