package database

import (
	"fmt"
	"time"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/utils"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var Mysql *gorm.DB

// InitDatabasePool opens the configured database and sizes its pool.
func InitDatabasePool() error {
	cfg := utils.EnvConfig.Database
	client := cfg.Client
	if client == "" {
		client = "mysql"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Db, cfg.Params)
	if client == "sqlite3" {
		dsn = cfg.Db
	}
	db, err := gorm.Open(client, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", client, err)
	}
	if cfg.MaxIdle > 0 {
		db.DB().SetMaxIdleConns(int(cfg.MaxIdle))
	}
	if cfg.MaxOpenConn > 0 {
		db.DB().SetMaxOpenConns(int(cfg.MaxOpenConn))
	}
	if cfg.MaxLifeTime != "" {
		if lifetime, err := time.ParseDuration(cfg.MaxLifeTime); err == nil {
			db.DB().SetConnMaxLifetime(lifetime)
		}
	}
	db.LogMode(cfg.LogEnable == 1)
	Mysql = db
	return nil
}

// Migrate creates or updates every table the worker owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserPreference{},
		&models.UserAllergy{},
		&models.FoodCategory{},
		&models.Food{},
		&models.NutritionalProfile{},
		&models.UserFoodRating{},
		&models.LearnedPreference{},
		&models.DailyNutritionLog{},
		&models.FoodConsumption{},
		&models.RecommendationSession{},
		&models.Recommendation{},
		&models.NutritionReport{},
		&models.ActivityLog{},
	).Error
}

// LockForUpdate adds a row lock to the next query where the dialect supports it.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialect().GetName() == "mysql" {
		return tx.Set("gorm:query_option", "FOR UPDATE")
	}
	return tx
}
