package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nutrimatch-go-worker/database/testutil"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/profile"
	"nutrimatch-go-worker/structs"

	"github.com/jinzhu/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func day(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

func newInsights(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	service := NewService(db, profile.NewService(db, testutil.Logger(t)), testutil.Logger(t))
	service.now = func() time.Time { return fixedNow }
	return service
}

func seedLog(t *testing.T, db *gorm.DB, userID int64, date time.Time, calories, protein float64, adherence, balance *float64) {
	t.Helper()
	dailyLog := models.DailyNutritionLog{UserID: userID, Date: date, ConsumedCalories: calories, ConsumedProtein: protein, AdherenceScore: adherence, BalanceScore: balance}
	if err := db.Create(&dailyLog).Error; err != nil {
		t.Fatalf("seed daily log: %v", err)
	}
}

// seedWeek gives user two logged days inside the default window and one
// outside it.
func seedWeek(t *testing.T, db *gorm.DB, userID int64) (models.Food, models.Food) {
	t.Helper()
	testutil.SeedProfile(t, db, models.NutritionalProfile{UserID: userID, TargetCalories: 2000, TargetProtein: 150, TargetCarbs: 250, TargetFat: 65})
	seedLog(t, db, userID, day(9), 1800, 130, floatPtr(80), floatPtr(75))
	seedLog(t, db, userID, day(10), 1200, 70, floatPtr(50), nil)
	seedLog(t, db, userID, day(1), 5000, 300, floatPtr(10), nil)

	oats := testutil.SeedFood(t, db, models.Food{Name: "Oats"})
	tuna := testutil.SeedFood(t, db, models.Food{Name: "Tuna"})
	rice := testutil.SeedFood(t, db, models.Food{Name: "Rice"})
	testutil.SeedConsumption(t, db, userID, oats.ID, day(9), "breakfast")
	testutil.SeedConsumption(t, db, userID, oats.ID, day(10), "breakfast")
	testutil.SeedConsumption(t, db, userID, oats.ID, day(10), "snack")
	testutil.SeedConsumption(t, db, userID, tuna.ID, day(10), "lunch")
	for i := 0; i < 5; i++ {
		testutil.SeedConsumption(t, db, userID, rice.ID, day(1), "dinner")
	}
	return oats, tuna
}

func TestInsights(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "ana")
	oats, tuna := seedWeek(t, db, user.ID)

	insights, err := newInsights(t, db).Insights(context.Background(), user.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !insights.HasData || insights.Days != 7 || insights.StartDate != "2026-03-04" || insights.EndDate != "2026-03-10" {
		t.Fatalf("window = %+v", insights)
	}
	wantAverages := structs.InsightAverages{Calories: 1500, Protein: 100, AdherenceScore: 65}
	if insights.Averages != wantAverages {
		t.Errorf("averages = %+v, want %+v", insights.Averages, wantAverages)
	}
	wantPatterns := structs.InsightPatterns{ConsistentDays: 1, HighProteinDays: 1, BalancedDays: 1}
	if insights.Patterns != wantPatterns {
		t.Errorf("patterns = %+v, want %+v", insights.Patterns, wantPatterns)
	}
	if len(insights.Improvements) != 1 || insights.Improvements[0].Area != "protein" {
		t.Errorf("improvements = %+v, want protein only", insights.Improvements)
	}
	wantFoods := []structs.FrequentFood{{FoodID: oats.ID, Name: "Oats", Count: 3}, {FoodID: tuna.ID, Name: "Tuna", Count: 1}}
	if len(insights.FrequentFoods) != len(wantFoods) {
		t.Fatalf("frequent foods = %+v, want %+v", insights.FrequentFoods, wantFoods)
	}
	for i := range wantFoods {
		if insights.FrequentFoods[i] != wantFoods[i] {
			t.Errorf("frequent food %d = %+v, want %+v", i, insights.FrequentFoods[i], wantFoods[i])
		}
	}
	if len(insights.DailyData) != 2 || insights.DailyData[0].Date != "2026-03-09" || insights.DailyData[1].Date != "2026-03-10" {
		t.Errorf("daily data = %+v", insights.DailyData)
	}
}

func TestInsightsWithoutLogs(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "ben")

	insights, err := newInsights(t, db).Insights(context.Background(), user.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if insights.HasData || insights.Days != 30 {
		t.Errorf("insights = %+v, want empty 30 day window", insights)
	}
	if insights.FrequentFoods == nil || insights.Improvements == nil || insights.DailyData == nil {
		t.Error("empty insights should carry empty lists")
	}
}

func TestInsightsLowAdherence(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "cal")
	testutil.SeedProfile(t, db, models.NutritionalProfile{UserID: user.ID, TargetCalories: 2000, TargetProtein: 100})
	seedLog(t, db, user.ID, day(10), 900, 95, nil, nil)

	insights, err := newInsights(t, db).Insights(context.Background(), user.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(insights.Improvements) != 1 || insights.Improvements[0].Area != "consistency" {
		t.Errorf("improvements = %+v, want consistency only", insights.Improvements)
	}
	if insights.Averages.AdherenceScore != 0 {
		t.Errorf("missing adherence should average as 0, got %v", insights.Averages.AdherenceScore)
	}
}

func TestInsightsUnknownUser(t *testing.T) {
	_, err := newInsights(t, testutil.DB(t)).Insights(context.Background(), 404, 7)
	if structs.ErrorKind(err) != structs.KindNotFound {
		t.Errorf("kind = %q, want not_found", structs.ErrorKind(err))
	}
}

func TestClampDays(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultDays},
		{-3, DefaultDays},
		{1, 1},
		{30, 30},
		{MaxDays + 1, MaxDays},
	}
	for _, tt := range tests {
		if got := ClampDays(tt.in); got != tt.want {
			t.Errorf("ClampDays(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReportServiceAllUsers(t *testing.T) {
	db := testutil.DB(t)
	active := testutil.SeedUser(t, db, "dee")
	testutil.SeedUser(t, db, "eli")
	db.Create(&models.User{Username: "fay", ProfileCompleted: false})
	seedWeek(t, db, active.ID)

	job := NewReportService(db, newInsights(t, db), testutil.Logger(t), 2)
	for run := 0; run < 2; run++ {
		job.Start(context.Background(), structs.ReportQueueParam{Type: "ALL", TaskID: 3})
		if len(job.Errors) != 0 {
			t.Fatalf("run %d errors = %v", run, job.Errors)
		}
	}
	if job.Result() != "ok=1 skip=1 fail=0" {
		t.Errorf("result = %q", job.Result())
	}

	var reports []models.NutritionReport
	if err := db.Find(&reports).Error; err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].UserID != active.ID || reports[0].Days != 7 {
		t.Fatalf("reports = %+v, want one 7 day report for user %d", reports, active.ID)
	}
	var stored structs.NutritionInsights
	if err := json.Unmarshal([]byte(reports[0].Properties), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Averages.Calories != 1500 {
		t.Errorf("stored averages = %+v", stored.Averages)
	}

	var entry models.ActivityLog
	if err := db.Where("log_name = ?", "schedule.go.nutrition-report").Last(&entry).Error; err != nil {
		t.Fatal(err)
	}
	var logged structs.ActivityLogJsonModel
	if err := json.Unmarshal([]byte(entry.Properties), &logged); err != nil {
		t.Fatal(err)
	}
	if !logged.Result || logged.Statistic.OKUser != 1 || logged.Statistic.TotalUser != 2 {
		t.Errorf("activity log = %+v", logged)
	}
}

func TestReportServiceSingleMissingUser(t *testing.T) {
	db := testutil.DB(t)
	job := NewReportService(db, newInsights(t, db), testutil.Logger(t), 1)
	job.Start(context.Background(), structs.ReportQueueParam{Type: "SINGLE", UserID: 77})
	if len(job.Errors) != 1 || job.Errors[0].UserID != 77 {
		t.Errorf("errors = %+v, want one for user 77", job.Errors)
	}
}
