package recommendation

import (
	"context"
	"math/rand"
	"sync"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/catalog"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/structs"

	"github.com/sirupsen/logrus"
)

// CandidateFilter narrows the catalog to the foods worth scoring for one
// request.
type CandidateFilter struct {
	cfg     Config
	catalog catalog.FoodCatalog
	log     *logrus.Entry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCandidateFilter samples with rng. Pass a fixed seed for reproducible
// candidate sets.
func NewCandidateFilter(cfg Config, foods catalog.FoodCatalog, rng *rand.Rand, log *logrus.Entry) *CandidateFilter {
	return &CandidateFilter{cfg: cfg, catalog: foods, rng: rng, log: log}
}

// BaseFilter is the verified catalog minus dietary exclusions and allergens.
func (f *CandidateFilter) BaseFilter(user structs.UserSnapshot) catalog.Filter {
	filter := catalog.Filter{VerifiedOnly: true}
	prefs := user.Preferences
	if prefs.IsVegetarian {
		filter.ExcludeNameTerms = append(filter.ExcludeNameTerms, f.cfg.Terms.Vegetarian...)
	}
	if prefs.IsVegan {
		filter.ExcludeNameTerms = append(filter.ExcludeNameTerms, f.cfg.Terms.Vegan...)
	}
	if prefs.IsGlutenFree {
		filter.ExcludeNameTerms = append(filter.ExcludeNameTerms, f.cfg.Terms.GlutenFree...)
	}
	if prefs.IsDairyFree {
		filter.ExcludeNameTerms = append(filter.ExcludeNameTerms, f.cfg.Terms.DairyFree...)
	}
	filter.ExcludeNameTerms = append(filter.ExcludeNameTerms, user.Allergens...)
	return filter
}

// MealInclusion is the meal-type heuristic, nil for meals without one.
func (f *CandidateFilter) MealInclusion(mealType string) *catalog.Inclusion {
	switch mealType {
	case enums.Breakfast:
		minProtein := f.cfg.Terms.BreakfastMinProtein
		return &catalog.Inclusion{NameTerms: f.cfg.Terms.Breakfast, MinProtein: &minProtein}
	case enums.Snack:
		maxCalories := f.cfg.Terms.SnackMaxCalories
		return &catalog.Inclusion{NameTerms: f.cfg.Terms.Snack, MaxCalories: &maxCalories}
	}
	return nil
}

// Candidates returns at most CandidateLimit foods in random order. When the
// restrictions leave fewer than MinCandidates foods, every verified food is
// eligible again, allergens included.
func (f *CandidateFilter) Candidates(ctx context.Context, user structs.UserSnapshot, mealType string) ([]models.Food, error) {
	logwg := f.log.WithFields(logrus.Fields{"task": "candidates", "user_id": user.UserID, "meal_type": mealType})

	base := f.BaseFilter(user)
	foods, err := f.catalog.Query(ctx, base)
	if err != nil {
		return nil, err
	}
	narrowed := len(base.ExcludeNameTerms) > 0

	if inclusion := f.MealInclusion(mealType); inclusion != nil {
		meal := base
		meal.AnyOf = inclusion
		mealFoods, err := f.catalog.Query(ctx, meal)
		if err != nil {
			return nil, err
		}
		if len(mealFoods) > 0 {
			foods = mealFoods
			narrowed = true
		} else {
			logwg.Info("no food matches the meal heuristic, keeping the broader set")
		}
	}

	if len(foods) < f.cfg.MinCandidates && narrowed {
		logwg.WithField("remaining", len(foods)).Warn("too few candidates, relaxing restrictions")
		metrics.SafetyValveTotal.Inc()
		if foods, err = f.catalog.Query(ctx, catalog.Filter{VerifiedOnly: true}); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	f.rng.Shuffle(len(foods), func(i, j int) { foods[i], foods[j] = foods[j], foods[i] })
	f.mu.Unlock()
	if len(foods) > f.cfg.CandidateLimit {
		foods = foods[:f.cfg.CandidateLimit]
	}
	metrics.CandidateCount.Observe(float64(len(foods)))
	return foods, nil
}
