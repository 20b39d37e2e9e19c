package consumption

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nutrimatch-go-worker/database/testutil"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/catalog"
	"nutrimatch-go-worker/services/learner"
	"nutrimatch-go-worker/services/profile"
	"nutrimatch-go-worker/structs"

	"github.com/jinzhu/gorm"
)

type fakeLearner struct {
	events []structs.ConsumptionEvent
}

func (f *fakeLearner) LearnFromConsumption(ctx context.Context, event structs.ConsumptionEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakePublisher struct {
	queues map[string][][]byte
}

func (f *fakePublisher) Publish(queue string, body []byte) error {
	if f.queues == nil {
		f.queues = make(map[string][][]byte)
	}
	f.queues[queue] = append(f.queues[queue], body)
	return nil
}

var noon = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	service *Service
	learner *fakeLearner
	user    models.User
	food    models.Food
}

func newFixture(t *testing.T, publisher Publisher) fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	user := testutil.SeedUser(t, db, "ana")
	food := testutil.SeedFood(t, db, models.Food{Name: "Lentil soup", Calories: 200, Protein: 10, Carbohydrate: 30, Fat: 4, Fiber: 4, Sodium: 300, ServingSize: 100, IsVerified: true})
	fake := &fakeLearner{}
	service := NewService(db, catalog.NewGormCatalog(db), profile.NewService(db, log), fake, publisher, log)
	service.now = func() time.Time { return noon }
	return fixture{db: db, service: service, learner: fake, user: user, food: food}
}

func TestLogConsumptionUpdatesDailyLog(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.service.LogConsumption(ctx, structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 150, MealType: "lunch"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Calories != 300 || first.Protein != 15 || first.Carbs != 45 || first.Fat != 6 {
		t.Errorf("portion = %+v", first)
	}
	if first.DailyTotals.AdherenceScore == nil || *first.DailyTotals.AdherenceScore != 12 {
		t.Errorf("adherence = %v, want 12", first.DailyTotals.AdherenceScore)
	}

	second, err := f.service.LogConsumption(ctx, structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 50, MealType: "dinner"})
	if err != nil {
		t.Fatal(err)
	}
	if second.DailyTotals.Calories != 400 || second.DailyTotals.Protein != 20 {
		t.Errorf("daily totals = %+v", second.DailyTotals)
	}
	if second.DailyTotals.AdherenceScore == nil || *second.DailyTotals.AdherenceScore != 16 {
		t.Errorf("adherence = %v, want 16", second.DailyTotals.AdherenceScore)
	}

	var logs []models.DailyNutritionLog
	f.db.Where("user_id = ?", f.user.ID).Find(&logs)
	if len(logs) != 1 {
		t.Fatalf("daily logs = %d, want 1", len(logs))
	}
	if logs[0].ConsumedFiber != 8 || logs[0].ConsumedSodium != 600 {
		t.Errorf("fiber=%v sodium=%v, want 8/600", logs[0].ConsumedFiber, logs[0].ConsumedSodium)
	}
	var consumptions []models.FoodConsumption
	f.db.Where("daily_log_id = ?", logs[0].ID).Find(&consumptions)
	if len(consumptions) != 2 {
		t.Errorf("consumptions = %d, want 2", len(consumptions))
	}

	if len(f.learner.events) != 2 || f.learner.events[1].MealType != "dinner" || f.learner.events[1].ConsumedAt != noon.Unix() {
		t.Errorf("learner events = %+v", f.learner.events)
	}
}

func TestLogConsumptionForPastDate(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.service.LogConsumption(context.Background(), structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 100, MealType: "snack", Date: "2024-06-01"}); err != nil {
		t.Fatal(err)
	}
	var log models.DailyNutritionLog
	if err := f.db.Where("user_id = ? AND date = ?", f.user.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).First(&log).Error; err != nil {
		t.Fatalf("log for 2024-06-01: %v", err)
	}
}

func TestLogConsumptionRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name string
		req  structs.ConsumptionRequest
		kind string
	}{
		{name: "negative quantity", req: structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: -5, MealType: "lunch"}, kind: structs.KindBadInput},
		{name: "unknown meal", req: structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 100, MealType: "brunch"}, kind: structs.KindBadInput},
		{name: "bad date", req: structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 100, MealType: "lunch", Date: "06/01/2024"}, kind: structs.KindBadInput},
		{name: "unknown food", req: structs.ConsumptionRequest{UserID: f.user.ID, FoodID: 9999, Quantity: 100, MealType: "lunch"}, kind: structs.KindNotFound},
		{name: "unknown user", req: structs.ConsumptionRequest{UserID: 9999, FoodID: f.food.ID, Quantity: 100, MealType: "lunch"}, kind: structs.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.LogConsumption(context.Background(), tt.req)
			if got := structs.ErrorKind(err); got != tt.kind {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.kind, err)
			}
		})
	}
	var count int
	f.db.Model(&models.FoodConsumption{}).Count(&count)
	if count != 0 || len(f.learner.events) != 0 {
		t.Errorf("rejected requests stored %d consumptions and %d events", count, len(f.learner.events))
	}
}

func TestLogConsumptionPublishes(t *testing.T) {
	publisher := &fakePublisher{}
	f := newFixture(t, publisher)
	if _, err := f.service.LogConsumption(context.Background(), structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 100, MealType: "breakfast"}); err != nil {
		t.Fatal(err)
	}
	messages := publisher.queues["consumption"]
	if len(messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(messages))
	}
	var event structs.ConsumptionEvent
	if err := json.Unmarshal(messages[0], &event); err != nil {
		t.Fatal(err)
	}
	if event.MessageID == "" || event.UserID != f.user.ID || event.FoodID != f.food.ID || event.MealType != "breakfast" {
		t.Errorf("event = %+v", event)
	}
	if len(f.learner.events) != 0 {
		t.Error("published event should not reach the learner directly")
	}
}

func TestLogConsumptionTeachesLearner(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	user := testutil.SeedUser(t, db, "ben")
	food := testutil.SeedFood(t, db, models.Food{Name: "Banana", Calories: 89, Protein: 1.1, IsVerified: true})
	service := NewService(db, catalog.NewGormCatalog(db), profile.NewService(db, log), learner.New(db, log), nil, log)

	for i := 0; i < 2; i++ {
		if _, err := service.LogConsumption(context.Background(), structs.ConsumptionRequest{UserID: user.ID, FoodID: food.ID, Quantity: 120, MealType: "snack"}); err != nil {
			t.Fatal(err)
		}
	}
	var pref models.LearnedPreference
	if err := db.Where("user_id = ? AND food_id = ?", user.ID, food.ID).First(&pref).Error; err != nil {
		t.Fatal(err)
	}
	if pref.FrequencyConsumed != 2 {
		t.Errorf("frequency = %d, want 2", pref.FrequencyConsumed)
	}
}

func TestRateFood(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rating, created, err := f.service.RateFood(ctx, structs.RatingRequest{UserID: f.user.ID, FoodID: f.food.ID, Rating: 4, MealType: "lunch", Notes: "good"})
	if err != nil {
		t.Fatal(err)
	}
	if !created || rating.Rating != 4 {
		t.Errorf("first rating = %+v created=%v", rating, created)
	}
	rating, created, err = f.service.RateFood(ctx, structs.RatingRequest{UserID: f.user.ID, FoodID: f.food.ID, Rating: 2})
	if err != nil {
		t.Fatal(err)
	}
	if created || rating.Rating != 2 || rating.MealType != "" {
		t.Errorf("updated rating = %+v created=%v", rating, created)
	}
	var stored []models.UserFoodRating
	f.db.Where("user_id = ?", f.user.ID).Find(&stored)
	if len(stored) != 1 || stored[0].Rating != 2 || stored[0].Notes != "" {
		t.Errorf("stored ratings = %+v", stored)
	}

	if _, _, err := f.service.RateFood(ctx, structs.RatingRequest{UserID: f.user.ID, FoodID: f.food.ID, Rating: 6}); structs.ErrorKind(err) != structs.KindBadInput {
		t.Errorf("rating 6 kind = %q, want bad_input", structs.ErrorKind(err))
	}
	if _, _, err := f.service.RateFood(ctx, structs.RatingRequest{UserID: f.user.ID, FoodID: 9999, Rating: 3}); structs.ErrorKind(err) != structs.KindNotFound {
		t.Errorf("unknown food kind = %q, want not_found", structs.ErrorKind(err))
	}
}

func TestDailySummary(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	calories, protein := 1800, 120.0
	f.db.Model(&f.user).Updates(map[string]interface{}{"daily_calories": calories, "daily_protein": protein})

	empty, err := f.service.DailySummary(ctx, f.user.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if empty.HasLog || !empty.IsToday || empty.Date != "2024-06-10" {
		t.Errorf("empty summary = %+v", empty)
	}
	if empty.Targets.Calories != 1800 || empty.Targets.Protein != 120 || empty.Targets.Carbs != 250 {
		t.Errorf("targets without profile = %+v", empty.Targets)
	}
	if empty.Percentages["calories"] != 0 {
		t.Errorf("percentages = %v", empty.Percentages)
	}

	if _, err := f.service.LogConsumption(ctx, structs.ConsumptionRequest{UserID: f.user.ID, FoodID: f.food.ID, Quantity: 100, MealType: "lunch"}); err != nil {
		t.Fatal(err)
	}
	summary, err := f.service.DailySummary(ctx, f.user.ID, "2024-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if !summary.HasLog || summary.Consumed.Calories != 200 || summary.Adherence == nil {
		t.Errorf("summary = %+v", summary)
	}
	// the profile created on the first log copies the user's needs
	if summary.Percentages["calories"] != 11.1 || summary.Percentages["protein"] != 8.3 {
		t.Errorf("percentages = %v", summary.Percentages)
	}

	past, err := f.service.DailySummary(ctx, f.user.ID, "2024-06-09")
	if err != nil {
		t.Fatal(err)
	}
	if past.IsToday || past.HasLog {
		t.Errorf("past summary = %+v", past)
	}
	if _, err := f.service.DailySummary(ctx, f.user.ID, "yesterday"); structs.ErrorKind(err) != structs.KindBadInput {
		t.Errorf("bad date kind = %q", structs.ErrorKind(err))
	}
}
