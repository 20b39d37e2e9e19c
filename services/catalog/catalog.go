package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/nutrition"
	"nutrimatch-go-worker/structs"

	"github.com/jinzhu/gorm"
	gormbulk "github.com/t-tiger/gorm-bulk-insert/v2"
)

// FoodCatalog is the read side of the food database used while building
// recommendations.
type FoodCatalog interface {
	Query(ctx context.Context, filter Filter) ([]models.Food, error)
	Get(ctx context.Context, id int64) (*models.Food, error)
}

type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) Query(ctx context.Context, filter Filter) ([]models.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := c.db.Preload("Category")
	if filter.VerifiedOnly {
		q = q.Where("is_verified = ?", true)
	}
	for _, term := range filter.ExcludeNameTerms {
		if pattern := likePattern(term); pattern != "" {
			q = q.Where("LOWER(name) NOT LIKE ? ESCAPE '!'", pattern)
		}
	}
	if len(filter.ExcludeCategoryIDs) > 0 {
		q = q.Where("category_id IS NULL OR category_id NOT IN (?)", filter.ExcludeCategoryIDs)
	}
	if in := filter.AnyOf; in != nil {
		var clauses []string
		var args []interface{}
		for _, term := range in.NameTerms {
			if pattern := likePattern(term); pattern != "" {
				clauses = append(clauses, "LOWER(name) LIKE ? ESCAPE '!'")
				args = append(args, pattern)
			}
		}
		if in.MinProtein != nil {
			clauses = append(clauses, "protein >= ?")
			args = append(args, *in.MinProtein)
		}
		if in.MaxCalories != nil {
			clauses = append(clauses, "calories <= ?")
			args = append(args, *in.MaxCalories)
		}
		if len(clauses) == 0 {
			return []models.Food{}, nil
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	foods := []models.Food{}
	if err := q.Order("id").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	return foods, nil
}

func (c *GormCatalog) Get(ctx context.Context, id int64) (*models.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var food models.Food
	if err := c.db.Preload("Category").Where("id = ?", id).First(&food).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, structs.NotFound("food", id)
		}
		return nil, fmt.Errorf("get food %d: %w", id, err)
	}
	return &food, nil
}

// Save stores new foods with their derived fields filled in.
func (c *GormCatalog) Save(ctx context.Context, foods []models.Food) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([]interface{}, 0, len(foods))
	for _, food := range foods {
		derived := nutrition.ComputeDerivedFields(food)
		food.ProteinDensity = derived.ProteinDensity
		food.NutrientDensityScore = derived.NutrientDensityScore
		if food.ServingSize <= 0 {
			food.ServingSize = 100
		}
		records = append(records, food)
	}
	if err := gormbulk.BulkInsert(c.db, records, 3000); err != nil {
		return fmt.Errorf("bulk insert foods: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a substring pattern for LIKE ... ESCAPE '!' that
// matches the lowercased term literally, as Filter.Match does.
func likePattern(term string) string {
	t := normalizeTerm(term)
	if t == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(t) + "%"
}

// MemoryCatalog serves a fixed food list, ordered by id.
type MemoryCatalog struct {
	foods []models.Food
}

func NewMemoryCatalog(foods []models.Food) *MemoryCatalog {
	sorted := append([]models.Food(nil), foods...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &MemoryCatalog{foods: sorted}
}

func (c *MemoryCatalog) Query(ctx context.Context, filter Filter) ([]models.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	foods := []models.Food{}
	for _, food := range c.foods {
		if filter.Match(food) {
			foods = append(foods, food)
		}
	}
	return foods, nil
}

func (c *MemoryCatalog) Get(ctx context.Context, id int64) (*models.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, food := range c.foods {
		if food.ID == id {
			f := food
			return &f, nil
		}
	}
	return nil, structs.NotFound("food", id)
}
