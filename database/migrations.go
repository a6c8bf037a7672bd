package database

import (
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.MilkOption{},
		&models.CustomizationOption{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemCustomization{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
