package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"nutrimatch-go-worker/database/testutil"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/structs"

	"github.com/redis/go-redis/v9"
)

func floatPtr(v float64) *float64 { return &v }

func sampleFoods(categoryID int64) []models.Food {
	return []models.Food{
		{ID: 1, Name: "Grilled Chicken Breast", CategoryID: &categoryID, Calories: 165, Protein: 31, IsVerified: true},
		{ID: 2, Name: "Peanut Butter", Calories: 588, Protein: 25, IsVerified: true},
		{ID: 3, Name: "Fresh Apple", Calories: 52, Protein: 0.3, IsVerified: true},
		{ID: 4, Name: "Whole Wheat Bread", Calories: 247, Protein: 13, IsVerified: true},
		{ID: 5, Name: "Greek Yogurt", Calories: 59, Protein: 10, IsVerified: true},
		{ID: 6, Name: "Mystery Snack", Calories: 400, Protein: 2, IsVerified: false},
	}
}

func ids(foods []models.Food) []int64 {
	out := make([]int64, 0, len(foods))
	for _, f := range foods {
		out = append(out, f.ID)
	}
	return out
}

var filterCases = []struct {
	name   string
	filter Filter
	want   []int64
}{
	{"verified only", Filter{VerifiedOnly: true}, []int64{1, 2, 3, 4, 5}},
	{"everything", Filter{}, []int64{1, 2, 3, 4, 5, 6}},
	{"exclude allergen case-insensitive", Filter{VerifiedOnly: true, ExcludeNameTerms: []string{"PEANUT"}}, []int64{1, 3, 4, 5}},
	{"exclude several terms", Filter{VerifiedOnly: true, ExcludeNameTerms: []string{"chicken", "wheat"}}, []int64{2, 3, 5}},
	{"exclude category keeps uncategorized", Filter{VerifiedOnly: true, ExcludeCategoryIDs: []int64{1}}, []int64{2, 3, 4, 5}},
	{"any of name or protein", Filter{VerifiedOnly: true, AnyOf: &Inclusion{NameTerms: []string{"apple"}, MinProtein: floatPtr(25)}}, []int64{1, 2, 3}},
	{"any of max calories", Filter{VerifiedOnly: true, AnyOf: &Inclusion{MaxCalories: floatPtr(100)}}, []int64{3, 5}},
	{"empty inclusion matches nothing", Filter{AnyOf: &Inclusion{}}, []int64{}},
}

func TestMemoryCatalogQuery(t *testing.T) {
	catalog := NewMemoryCatalog(sampleFoods(1))
	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			foods, err := catalog.Query(context.Background(), tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if got := ids(foods); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGormCatalogMatchesMemoryCatalog(t *testing.T) {
	db := testutil.DB(t)
	category := testutil.SeedCategory(t, db, "Meat")
	for _, food := range sampleFoods(category.ID) {
		testutil.SeedFood(t, db, food)
	}
	catalog := NewGormCatalog(db)
	for _, tt := range filterCases {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			if len(filter.ExcludeCategoryIDs) > 0 {
				filter.ExcludeCategoryIDs = []int64{category.ID}
			}
			foods, err := catalog.Query(context.Background(), filter)
			if err != nil {
				t.Fatal(err)
			}
			if got := ids(foods); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query() ids = %v, want %v", got, tt.want)
			}
		})
	}

	food, err := catalog.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if food.Category == nil || food.Category.Name != "Meat" {
		t.Errorf("Get() should preload category, got %+v", food.Category)
	}
	if _, err := catalog.Get(context.Background(), 999); !errors.Is(err, structs.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCatalogsTreatWildcardsLiterally(t *testing.T) {
	foods := []models.Food{
		{ID: 1, Name: "Soy_Sauce", IsVerified: true},
		{ID: 2, Name: "Soyasauce", IsVerified: true},
		{ID: 3, Name: "100% Juice", IsVerified: true},
		{ID: 4, Name: "1000 Island Dressing", IsVerified: true},
		{ID: 5, Name: "Yes!Bar", IsVerified: true},
	}
	db := testutil.DB(t)
	for _, food := range foods {
		testutil.SeedFood(t, db, food)
	}
	catalogs := map[string]FoodCatalog{"memory": NewMemoryCatalog(foods), "gorm": NewGormCatalog(db)}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"underscore exclusion", Filter{ExcludeNameTerms: []string{"soy_sauce"}}, []int64{2, 3, 4, 5}},
		{"percent exclusion", Filter{ExcludeNameTerms: []string{"100%"}}, []int64{1, 2, 4, 5}},
		{"escape character", Filter{ExcludeNameTerms: []string{"yes!"}}, []int64{1, 2, 3, 4}},
		{"percent inclusion", Filter{AnyOf: &Inclusion{NameTerms: []string{"100%"}}}, []int64{3}},
		{"underscore inclusion", Filter{AnyOf: &Inclusion{NameTerms: []string{"y_s"}}}, []int64{1}},
	}
	for name, catalog := range catalogs {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := catalog.Query(context.Background(), tt.filter)
				if err != nil {
					t.Fatal(err)
				}
				if gotIDs := ids(got); !reflect.DeepEqual(gotIDs, tt.want) {
					t.Errorf("Query() ids = %v, want %v", gotIDs, tt.want)
				}
			})
		}
	}
}

func TestGormCatalogSaveComputesDerivedFields(t *testing.T) {
	db := testutil.DB(t)
	catalog := NewGormCatalog(db)
	err := catalog.Save(context.Background(), []models.Food{
		{Name: "Tuna", Calories: 200, Protein: 25, IsVerified: true},
		{Name: "Water", IsVerified: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	foods, err := catalog.Query(context.Background(), Filter{VerifiedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(foods) != 2 {
		t.Fatalf("saved %d foods, want 2", len(foods))
	}
	if foods[0].ProteinDensity != 12.5 || foods[0].ServingSize != 100 {
		t.Errorf("tuna = density %v serving %v", foods[0].ProteinDensity, foods[0].ServingSize)
	}
	if foods[1].ProteinDensity != 0 || foods[1].NutrientDensityScore != 0 {
		t.Errorf("zero calorie food should have zero derived fields: %+v", foods[1])
	}
}

func TestFilterKeyIgnoresTermOrder(t *testing.T) {
	a := Filter{VerifiedOnly: true, ExcludeNameTerms: []string{"Peanut", "milk"}, ExcludeCategoryIDs: []int64{3, 1}}
	b := Filter{VerifiedOnly: true, ExcludeNameTerms: []string{"milk", "peanut "}, ExcludeCategoryIDs: []int64{1, 3}}
	if a.Key() != b.Key() {
		t.Error("equivalent filters should share a cache key")
	}
	c := Filter{VerifiedOnly: true, ExcludeNameTerms: []string{"milk"}}
	if a.Key() == c.Key() {
		t.Error("different filters should not share a cache key")
	}
}

type fakeCache struct {
	entries map[string]string
	getErr  error
	sets    int
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	value, ok := f.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.sets++
	f.entries[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

type countingCatalog struct {
	FoodCatalog
	queries int
}

func (c *countingCatalog) Query(ctx context.Context, filter Filter) ([]models.Food, error) {
	c.queries++
	return c.FoodCatalog.Query(ctx, filter)
}

func TestCachedCatalog(t *testing.T) {
	inner := &countingCatalog{FoodCatalog: NewMemoryCatalog(sampleFoods(1))}
	cache := &fakeCache{entries: map[string]string{}}
	catalog := NewCachedCatalog(inner, cache, time.Minute, testutil.Logger(t))
	filter := Filter{VerifiedOnly: true, ExcludeNameTerms: []string{"peanut"}}

	first, err := catalog.Query(context.Background(), filter)
	if err != nil {
		t.Fatal(err)
	}
	second, err := catalog.Query(context.Background(), filter)
	if err != nil {
		t.Fatal(err)
	}
	if inner.queries != 1 || cache.sets != 1 {
		t.Errorf("inner queries = %d, cache sets = %d; want 1 and 1", inner.queries, cache.sets)
	}
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Errorf("cached result %v differs from %v", ids(second), ids(first))
	}

	cache.getErr = errors.New("connection refused")
	if _, err := catalog.Query(context.Background(), filter); err != nil {
		t.Fatalf("redis failure should fall through, got %v", err)
	}
	if inner.queries != 2 {
		t.Errorf("inner queries = %d after cache failure, want 2", inner.queries)
	}
}
