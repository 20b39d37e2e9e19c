package enums

const (
	ProcessSingle = "SINGLE"
	ProcessAll    = "ALL"
)

// meal types
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
	Snack     = "snack"
)

// recommendation feedback
const (
	FeedbackPending  = "pending"
	FeedbackAccepted = "accepted"
	FeedbackRejected = "rejected"
	FeedbackModified = "modified"
)

// recommendation session types
const (
	SessionDailyPlanning  = "daily_planning"
	SessionMealSuggestion = "meal_suggestion"
	SessionNutrientGap    = "nutrient_gap"
	SessionSimilarFoods   = "similar_foods"
)

const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

const (
	GoalLoseWeight     = "lose_weight"
	GoalMaintainWeight = "maintain_weight"
	GoalGainWeight     = "gain_weight"
	GoalBuildMuscle    = "build_muscle"
	GoalImproveHealth  = "improve_health"
)

const (
	ActivitySedentary   = "sedentary"
	ActivityLight       = "light"
	ActivityModerate    = "moderate"
	ActivityActive      = "active"
	ActivityExtraActive = "extra_active"
)

// queues
const (
	ConsumptionQueue     = "consumption"
	FeedbackQueue        = "feedback"
	ProfileInitQueue     = "profile-init"
	NutritionReportQueue = "nutrition-report"
)

// event sources for learned preferences
const (
	SourceConsumption = "consumption"
	SourceFeedback    = "feedback"
)

var MealTypes = []string{Breakfast, Lunch, Dinner, Snack}
