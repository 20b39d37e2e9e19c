package recommendation

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every tunable constant of candidate selection and scoring.
// Values under the "recommendation" key of config.yml override the defaults.
type Config struct {
	CandidateLimit  int `mapstructure:"candidate_limit"`
	MinCandidates   int `mapstructure:"min_candidates"`
	DefaultCount    int `mapstructure:"default_count"`
	MaxCount        int `mapstructure:"max_count"`
	DiversityFactor int `mapstructure:"diversity_factor"`
	ScoringWorkers  int `mapstructure:"scoring_workers"`

	Terms       TermConfig        `mapstructure:"terms"`
	Nutrition   NutritionConfig   `mapstructure:"nutrition"`
	Preference  PreferenceConfig  `mapstructure:"preference"`
	Variety     VarietyConfig     `mapstructure:"variety"`
	Convenience ConvenienceConfig `mapstructure:"convenience"`
	Weights     WeightConfig      `mapstructure:"weights"`
	Quantity    QuantityConfig    `mapstructure:"quantity"`
	Reason      ReasonConfig      `mapstructure:"reason"`
}

// TermConfig lists the name substrings used by dietary exclusions and meal
// heuristics.
type TermConfig struct {
	Vegetarian          []string `mapstructure:"vegetarian"`
	Vegan               []string `mapstructure:"vegan"`
	GlutenFree          []string `mapstructure:"gluten_free"`
	DairyFree           []string `mapstructure:"dairy_free"`
	Breakfast           []string `mapstructure:"breakfast"`
	BreakfastMinProtein float64  `mapstructure:"breakfast_min_protein"`
	Snack               []string `mapstructure:"snack"`
	SnackMaxCalories    float64  `mapstructure:"snack_max_calories"`
}

type NutritionConfig struct {
	NeutralScore float64 `mapstructure:"neutral_score"`

	ProteinDensityHigh      float64 `mapstructure:"protein_density_high"`
	ProteinDensityMid       float64 `mapstructure:"protein_density_mid"`
	ProteinDensityLow       float64 `mapstructure:"protein_density_low"`
	ProteinDensityHighBonus float64 `mapstructure:"protein_density_high_bonus"`
	ProteinDensityMidBonus  float64 `mapstructure:"protein_density_mid_bonus"`
	ProteinDensityLowBonus  float64 `mapstructure:"protein_density_low_bonus"`

	FiberHigh      float64 `mapstructure:"fiber_high"`
	FiberMid       float64 `mapstructure:"fiber_mid"`
	FiberHighBonus float64 `mapstructure:"fiber_high_bonus"`
	FiberMidBonus  float64 `mapstructure:"fiber_mid_bonus"`

	SodiumHigh        float64 `mapstructure:"sodium_high"`
	SodiumMid         float64 `mapstructure:"sodium_mid"`
	SodiumHighPenalty float64 `mapstructure:"sodium_high_penalty"`
	SodiumMidPenalty  float64 `mapstructure:"sodium_mid_penalty"`

	MicronutrientBonus float64 `mapstructure:"micronutrient_bonus"`
	VitaminCMin        float64 `mapstructure:"vitamin_c_min"`
	CalciumMin         float64 `mapstructure:"calcium_min"`
	IronMin            float64 `mapstructure:"iron_min"`

	ProteinNeedRemaining float64 `mapstructure:"protein_need_remaining"`
	ProteinNeedFood      float64 `mapstructure:"protein_need_food"`
	ProteinNeedBonus     float64 `mapstructure:"protein_need_bonus"`
	CalorieBudgetLow     float64 `mapstructure:"calorie_budget_low"`
	CalorieHeavyFood     float64 `mapstructure:"calorie_heavy_food"`
	CalorieHeavyPenalty  float64 `mapstructure:"calorie_heavy_penalty"`
}

type PreferenceConfig struct {
	NeutralScore     float64 `mapstructure:"neutral_score"`
	RatingScale      float64 `mapstructure:"rating_scale"`
	MealMatchMin     int     `mapstructure:"meal_match_min"`
	MealMatchBonus   float64 `mapstructure:"meal_match_bonus"`
	LearnedAmplitude float64 `mapstructure:"learned_amplitude"`
}

// VarietyConfig scores by days since the food was last eaten.
type VarietyConfig struct {
	FreshDays   int     `mapstructure:"fresh_days"`
	RecentDays  int     `mapstructure:"recent_days"`
	LatelyDays  int     `mapstructure:"lately_days"`
	FreshScore  float64 `mapstructure:"fresh_score"`
	RecentScore float64 `mapstructure:"recent_score"`
	LatelyScore float64 `mapstructure:"lately_score"`
	TodayScore  float64 `mapstructure:"today_score"`
}

type ConvenienceConfig struct {
	BaseScore        float64  `mapstructure:"base_score"`
	NaturalTerms     []string `mapstructure:"natural_terms"`
	NaturalBonus     float64  `mapstructure:"natural_bonus"`
	ProcessedTerms   []string `mapstructure:"processed_terms"`
	ProcessedPenalty float64  `mapstructure:"processed_penalty"`
}

type WeightConfig struct {
	Nutrition        float64 `mapstructure:"nutrition"`
	Preference       float64 `mapstructure:"preference"`
	Variety          float64 `mapstructure:"variety"`
	Convenience      float64 `mapstructure:"convenience"`
	HighProteinGrams float64 `mapstructure:"high_protein_grams"`
	HighProteinBonus float64 `mapstructure:"high_protein_bonus"`
}

type QuantityConfig struct {
	MealShare float64 `mapstructure:"meal_share"`
	MinGrams  float64 `mapstructure:"min_grams"`
	MaxGrams  float64 `mapstructure:"max_grams"`
}

type ReasonConfig struct {
	NutritionMin  float64 `mapstructure:"nutrition_min"`
	FavoriteMin   float64 `mapstructure:"favorite_min"`
	MatchMin      float64 `mapstructure:"match_min"`
	LowCalorieMax float64 `mapstructure:"low_calorie_max"`
}

var meatTerms = []string{"chicken", "beef", "pork", "meat"}

func DefaultConfig() Config {
	return Config{
		CandidateLimit:  200,
		MinCandidates:   10,
		DefaultCount:    10,
		MaxCount:        20,
		DiversityFactor: 2,
		ScoringWorkers:  8,
		Terms: TermConfig{
			Vegetarian:          append([]string(nil), meatTerms...),
			Vegan:               append(append([]string(nil), meatTerms...), "milk", "cheese", "egg", "yogurt"),
			GlutenFree:          []string{"bread", "pasta", "wheat"},
			DairyFree:           []string{"milk", "cheese", "yogurt", "butter", "cream"},
			Breakfast:           []string{"egg", "milk", "oat", "fruit", "yogurt", "cereal", "banana", "apple", "orange", "bread"},
			BreakfastMinProtein: 10,
			Snack:               []string{"fruit", "nut", "yogurt"},
			SnackMaxCalories:    300,
		},
		Nutrition: NutritionConfig{
			NeutralScore:            50,
			ProteinDensityHigh:      15,
			ProteinDensityMid:       10,
			ProteinDensityLow:       5,
			ProteinDensityHighBonus: 25,
			ProteinDensityMidBonus:  15,
			ProteinDensityLowBonus:  10,
			FiberHigh:               5,
			FiberMid:                3,
			FiberHighBonus:          20,
			FiberMidBonus:           10,
			SodiumHigh:              400,
			SodiumMid:               200,
			SodiumHighPenalty:       15,
			SodiumMidPenalty:        5,
			MicronutrientBonus:      5,
			VitaminCMin:             10,
			CalciumMin:              100,
			IronMin:                 2,
			ProteinNeedRemaining:    20,
			ProteinNeedFood:         15,
			ProteinNeedBonus:        20,
			CalorieBudgetLow:        300,
			CalorieHeavyFood:        400,
			CalorieHeavyPenalty:     20,
		},
		Preference: PreferenceConfig{
			NeutralScore:     50,
			RatingScale:      20,
			MealMatchMin:     4,
			MealMatchBonus:   10,
			LearnedAmplitude: 50,
		},
		Variety: VarietyConfig{
			FreshDays:   7,
			RecentDays:  3,
			LatelyDays:  1,
			FreshScore:  100,
			RecentScore: 70,
			LatelyScore: 40,
			TodayScore:  10,
		},
		Convenience: ConvenienceConfig{
			BaseScore:        70,
			NaturalTerms:     []string{"fresh", "raw", "natural"},
			NaturalBonus:     20,
			ProcessedTerms:   []string{"processed", "instant", "frozen"},
			ProcessedPenalty: 10,
		},
		Weights: WeightConfig{
			Nutrition:        0.4,
			Preference:       0.3,
			Variety:          0.2,
			Convenience:      0.1,
			HighProteinGrams: 15,
			HighProteinBonus: 0.1,
		},
		Quantity: QuantityConfig{
			MealShare: 0.3,
			MinGrams:  50,
			MaxGrams:  300,
		},
		Reason: ReasonConfig{
			NutritionMin:  80,
			FavoriteMin:   80,
			MatchMin:      60,
			LowCalorieMax: 100,
		},
	}
}

// LoadConfig overlays the "recommendation" section of the loaded viper
// configuration on DefaultConfig.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if viper.IsSet("recommendation") {
		// A configured list replaces the default one. Decoding into a
		// non-nil slice would only overwrite its leading elements.
		for key, list := range cfg.termLists() {
			if viper.IsSet("recommendation." + key) {
				*list = nil
			}
		}
		if err := viper.UnmarshalKey("recommendation", &cfg); err != nil {
			return cfg, fmt.Errorf("unmarshal recommendation config: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) termLists() map[string]*[]string {
	return map[string]*[]string{
		"terms.vegetarian":            &c.Terms.Vegetarian,
		"terms.vegan":                 &c.Terms.Vegan,
		"terms.gluten_free":           &c.Terms.GlutenFree,
		"terms.dairy_free":            &c.Terms.DairyFree,
		"terms.breakfast":             &c.Terms.Breakfast,
		"terms.snack":                 &c.Terms.Snack,
		"convenience.natural_terms":   &c.Convenience.NaturalTerms,
		"convenience.processed_terms": &c.Convenience.ProcessedTerms,
	}
}

func (c Config) Validate() error {
	switch {
	case c.CandidateLimit < 1:
		return fmt.Errorf("recommendation.candidate_limit must be positive, got %d", c.CandidateLimit)
	case c.MinCandidates < 0:
		return fmt.Errorf("recommendation.min_candidates must not be negative, got %d", c.MinCandidates)
	case c.MaxCount < 1 || c.DefaultCount < 1 || c.DefaultCount > c.MaxCount:
		return fmt.Errorf("recommendation.default_count %d must be within [1, max_count %d]", c.DefaultCount, c.MaxCount)
	case c.DiversityFactor < 1:
		return fmt.Errorf("recommendation.diversity_factor must be at least 1, got %d", c.DiversityFactor)
	case c.ScoringWorkers < 1:
		return fmt.Errorf("recommendation.scoring_workers must be positive, got %d", c.ScoringWorkers)
	case c.Quantity.MinGrams <= 0 || c.Quantity.MaxGrams < c.Quantity.MinGrams:
		return fmt.Errorf("recommendation.quantity range [%v, %v] is invalid", c.Quantity.MinGrams, c.Quantity.MaxGrams)
	case c.Weights.Nutrition < 0 || c.Weights.Preference < 0 || c.Weights.Variety < 0 || c.Weights.Convenience < 0:
		return fmt.Errorf("recommendation.weights must not be negative")
	}
	return nil
}
