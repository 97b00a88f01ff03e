package nutrition

import (
	"math"
	"time"
)

// activity level multipliers applied to BMR to get the TDEE
var activityMultipliers = map[ActivityLevel]float64{
	ActivityLevelSedentary:  1.2,
	ActivityLevelLight:      1.375,
	ActivityLevelModerate:   1.55,
	ActivityLevelActive:     1.725,
	ActivityLevelVeryActive: 1.9,
}

const (
	caloriesPerGramProtein = 4
	caloriesPerGramCarbs   = 4
	caloriesPerGramFat     = 9
)

// BMI = weight [kg] / height [m] squared.
func BMI(weightKg, heightCm float64) float64 {
	heightMeters := heightCm / 100
	return weightKg / (heightMeters * heightMeters)
}

// BMR via the Mifflin-St Jeor equation. Gender "other" gets the same
// offset as female.
func BMR(weightKg, heightCm float64, ageYears int, gender Gender) float64 {
	baseBMR := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if gender == GenderMale {
		return baseBMR + 5
	}
	return baseBMR - 161
}

// TDEE multiplies the BMR by the activity level factor. Unrecognized
// levels fall back to sedentary.
func TDEE(bmr float64, level ActivityLevel) float64 {
	multiplier, ok := activityMultipliers[level]
	if !ok {
		multiplier = activityMultipliers[ActivityLevelSedentary]
	}
	return bmr * multiplier
}

// DailyCalorieGoal adjusts the TDEE for the goal type: 500 kcal deficit
// for losing weight, 300 kcal surplus for gaining muscle. The result is
// deliberately not clamped to a safe floor - that is the caller's call.
func DailyCalorieGoal(tdee float64, goal GoalType) float64 {
	switch goal {
	case GoalTypeLoseWeight:
		return tdee - 500
	case GoalTypeGainMuscle:
		return tdee + 300
	default:
		return tdee
	}
}

// ProteinGoalGrams is 2g of protein per kg of body weight.
func ProteinGoalGrams(weightKg float64) float64 {
	return weightKg * 2
}

// FatGoalGrams allots 25% of the daily calories to fat, at 9 kcal per gram.
func FatGoalGrams(dailyCalorieGoal float64) float64 {
	return dailyCalorieGoal * 0.25 / caloriesPerGramFat
}

// CarbsGoalGrams fills the calories left after protein and fat with
// carbs, at 4 kcal per gram. Can go negative for very low calorie goals
// combined with a high protein target - returned as is, callers decide
// whether to clamp.
func CarbsGoalGrams(dailyCalorieGoal, proteinGrams, fatGrams float64) float64 {
	remaining := dailyCalorieGoal - (proteinGrams*caloriesPerGramProtein + fatGrams*caloriesPerGramFat)
	return remaining / caloriesPerGramCarbs
}

// AgeYears computes age by calendar year subtraction only, i.e. the
// birthday within the year is ignored. A known simplification.
func AgeYears(dateOfBirth, now time.Time) int {
	return now.Year() - dateOfBirth.Year()
}

// Goals is the full derived nutrition bundle for a profile. The goal
// gram/calorie fields are rounded to the nearest integer, bmi/bmr/tdee
// keep their float precision for display.
type Goals struct {
	BMI              float64
	BMR              float64
	TDEE             float64
	DailyCalorieGoal int
	DailyProteinGoal int
	DailyCarbsGoal   int
	DailyFatGoal     int
}

type GoalsParams struct {
	WeightKg      float64
	HeightCm      float64
	DateOfBirth   time.Time
	Gender        Gender
	ActivityLevel ActivityLevel
	GoalType      GoalType
}

// CalculateGoals derives every nutrition field from the base profile
// attributes. Pure and deterministic - same input, same output.
func CalculateGoals(params GoalsParams, now time.Time) Goals {
	age := AgeYears(params.DateOfBirth, now)
	bmi := BMI(params.WeightKg, params.HeightCm)
	bmr := BMR(params.WeightKg, params.HeightCm, age, params.Gender)
	tdee := TDEE(bmr, params.ActivityLevel)

	calorieGoal := DailyCalorieGoal(tdee, params.GoalType)
	proteinGrams := ProteinGoalGrams(params.WeightKg)
	fatGrams := FatGoalGrams(calorieGoal)
	carbsGrams := CarbsGoalGrams(calorieGoal, proteinGrams, fatGrams)

	return Goals{
		BMI:              bmi,
		BMR:              bmr,
		TDEE:             tdee,
		DailyCalorieGoal: int(math.Round(calorieGoal)),
		DailyProteinGoal: int(math.Round(proteinGrams)),
		DailyCarbsGoal:   int(math.Round(carbsGrams)),
		DailyFatGoal:     int(math.Round(fatGrams)),
	}
}
