package nutrition

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

type ActivityLevel string

const (
	ActivityLevelSedentary  ActivityLevel = "sedentary"
	ActivityLevelLight      ActivityLevel = "light"
	ActivityLevelModerate   ActivityLevel = "moderate"
	ActivityLevelActive     ActivityLevel = "active"
	ActivityLevelVeryActive ActivityLevel = "very_active"
)

func (al ActivityLevel) IsValid() bool {
	_, ok := activityMultipliers[al]
	return ok
}

type GoalType string

const (
	GoalTypeLoseWeight GoalType = "lose_weight"
	GoalTypeMaintain   GoalType = "maintain"
	GoalTypeGainMuscle GoalType = "gain_muscle"
)

func (gt GoalType) IsValid() bool {
	switch gt {
	case GoalTypeLoseWeight, GoalTypeMaintain, GoalTypeGainMuscle:
		return true
	default:
		return false
	}
}

// BuildType is collected on the profile but feeds no calculation,
// it is stored as plain metadata.
type BuildType string

const (
	BuildTypeEctomorph BuildType = "ectomorph"
	BuildTypeMesomorph BuildType = "mesomorph"
	BuildTypeEndomorph BuildType = "endomorph"
)

func (bt BuildType) IsValid() bool {
	switch bt {
	case BuildTypeEctomorph, BuildTypeMesomorph, BuildTypeEndomorph:
		return true
	default:
		return false
	}
}
