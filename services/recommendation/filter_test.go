package recommendation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"nutrimatch-go-worker/database/testutil"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/catalog"
	"nutrimatch-go-worker/structs"
)

// countingCatalog records the filters it was asked for.
type countingCatalog struct {
	*catalog.MemoryCatalog
	queries []catalog.Filter
}

func (c *countingCatalog) Query(ctx context.Context, filter catalog.Filter) ([]models.Food, error) {
	c.queries = append(c.queries, filter)
	return c.MemoryCatalog.Query(ctx, filter)
}

func newFilter(t *testing.T, foods []models.Food, seed int64) (*CandidateFilter, *countingCatalog) {
	t.Helper()
	c := &countingCatalog{MemoryCatalog: catalog.NewMemoryCatalog(foods)}
	return NewCandidateFilter(DefaultConfig(), c, rand.New(rand.NewSource(seed)), testutil.Logger(t)), c
}

func generic(n int, start int64) []models.Food {
	foods := make([]models.Food, 0, n)
	for i := 0; i < n; i++ {
		foods = append(foods, models.Food{ID: start + int64(i), Name: fmt.Sprintf("Vegetable %d", i), Calories: 500, Protein: 2, IsVerified: true})
	}
	return foods
}

func names(foods []models.Food) string {
	out := make([]string, 0, len(foods))
	for _, f := range foods {
		out = append(out, strings.ToLower(f.Name))
	}
	return strings.Join(out, "|")
}

func TestCandidatesExcludeAllergen(t *testing.T) {
	foods := append(generic(15, 1), models.Food{ID: 100, Name: "Peanut butter", IsVerified: true}, models.Food{ID: 101, Name: "Unverified kale"})
	filter, _ := newFilter(t, foods, 1)

	got, err := filter.Candidates(context.Background(), structs.UserSnapshot{UserID: 1, Allergens: []string{"Peanut"}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 15 {
		t.Errorf("candidates = %d, want 15", len(got))
	}
	if strings.Contains(names(got), "peanut") || strings.Contains(names(got), "unverified") {
		t.Errorf("excluded food returned: %s", names(got))
	}
}

func TestCandidatesSafetyValveIgnoresAllergens(t *testing.T) {
	foods := append(generic(5, 1), models.Food{ID: 100, Name: "Peanut butter", IsVerified: true})
	filter, c := newFilter(t, foods, 1)

	got, err := filter.Candidates(context.Background(), structs.UserSnapshot{UserID: 1, Allergens: []string{"peanut"}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 6 || !strings.Contains(names(got), "peanut") {
		t.Errorf("safety valve should return every verified food, got %s", names(got))
	}
	if last := c.queries[len(c.queries)-1]; len(last.ExcludeNameTerms) != 0 || !last.VerifiedOnly {
		t.Errorf("relaxed query = %+v", last)
	}
}

func TestCandidatesDietaryRestrictions(t *testing.T) {
	foods := append(generic(12, 1),
		models.Food{ID: 100, Name: "Chicken breast", IsVerified: true},
		models.Food{ID: 101, Name: "Greek yogurt", IsVerified: true},
		models.Food{ID: 102, Name: "Wheat bread", IsVerified: true},
		models.Food{ID: 103, Name: "Butter", IsVerified: true},
	)
	tests := []struct {
		name     string
		prefs    models.UserPreference
		excluded []string
		kept     []string
	}{
		{name: "vegetarian", prefs: models.UserPreference{IsVegetarian: true}, excluded: []string{"chicken"}, kept: []string{"yogurt", "bread", "butter"}},
		{name: "vegan", prefs: models.UserPreference{IsVegan: true}, excluded: []string{"chicken", "yogurt"}, kept: []string{"bread"}},
		{name: "gluten free", prefs: models.UserPreference{IsGlutenFree: true}, excluded: []string{"bread"}, kept: []string{"chicken"}},
		{name: "dairy free", prefs: models.UserPreference{IsDairyFree: true}, excluded: []string{"yogurt", "butter"}, kept: []string{"chicken", "bread"}},
		{name: "keto has no name list", prefs: models.UserPreference{IsKeto: true}, kept: []string{"chicken", "yogurt", "bread", "butter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, _ := newFilter(t, foods, 3)
			got, err := filter.Candidates(context.Background(), structs.UserSnapshot{UserID: 1, Preferences: tt.prefs}, "")
			if err != nil {
				t.Fatal(err)
			}
			all := names(got)
			for _, term := range tt.excluded {
				if strings.Contains(all, term) {
					t.Errorf("%q should be excluded: %s", term, all)
				}
			}
			for _, term := range tt.kept {
				if !strings.Contains(all, term) {
					t.Errorf("%q should be kept: %s", term, all)
				}
			}
		})
	}
}

func TestCandidatesMealHeuristic(t *testing.T) {
	foods := generic(5, 1)
	for i := int64(0); i < 10; i++ {
		foods = append(foods, models.Food{ID: 50 + i, Name: fmt.Sprintf("Oat bar %d", i), Calories: 150, Protein: 2, IsVerified: true})
	}
	foods = append(foods,
		models.Food{ID: 100, Name: "Tuna steak", Calories: 130, Protein: 28, IsVerified: true},
		models.Food{ID: 101, Name: "Almond nut mix", Calories: 600, Protein: 20, IsVerified: true},
		models.Food{ID: 102, Name: "Cheese pizza", Calories: 700, Protein: 5, IsVerified: true},
	)
	filter, _ := newFilter(t, foods, 5)

	breakfast, err := filter.Candidates(context.Background(), structs.UserSnapshot{UserID: 1}, "breakfast")
	if err != nil {
		t.Fatal(err)
	}
	if len(breakfast) != 12 || strings.Contains(names(breakfast), "pizza") || strings.Contains(names(breakfast), "vegetable") {
		t.Errorf("breakfast candidates = %s", names(breakfast))
	}

	snack, err := filter.Candidates(context.Background(), structs.UserSnapshot{UserID: 1}, "snack")
	if err != nil {
		t.Fatal(err)
	}
	if len(snack) != 12 || !strings.Contains(names(snack), "almond") || strings.Contains(names(snack), "pizza") {
		t.Errorf("snack candidates = %s", names(snack))
	}
}

func TestCandidatesMealHeuristicIsSoft(t *testing.T) {
	foods := generic(12, 1)
	filter, _ := newFilter(t, foods, 5)
	got, err := filter.Candidates(context.Background(), structs.UserSnapshot{UserID: 1}, "breakfast")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 12 {
		t.Errorf("candidates = %d, want the broader 12", len(got))
	}
}

func TestCandidatesCapAndSeed(t *testing.T) {
	foods := generic(250, 1)
	first, _ := newFilter(t, foods, 42)
	second, _ := newFilter(t, foods, 42)

	a, err := first.Candidates(context.Background(), structs.UserSnapshot{UserID: 1}, "lunch")
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Candidates(context.Background(), structs.UserSnapshot{UserID: 1}, "lunch")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 200 || len(b) != 200 {
		t.Fatalf("candidates = %d and %d, want 200", len(a), len(b))
	}
	if names(a) != names(b) {
		t.Error("same seed produced different candidate sets")
	}
	seen := make(map[int64]bool)
	for _, f := range a {
		if seen[f.ID] {
			t.Fatalf("food %d sampled twice", f.ID)
		}
		seen[f.ID] = true
	}
}
