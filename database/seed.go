package database

import (
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/gorm"
)

// DefaultMenu is the catalog loaded by Seed.
var DefaultMenu = []models.Item{
	{Name: "Americano", Description: "Espresso lengthened with hot water", Available: true},
	{Name: "Cappuccino", Description: "Espresso with steamed milk and foam", Available: true, AllowsMilkChoice: true, AllowsCustomizations: true},
	{Name: "Chai Latte", Description: "Spiced black tea with steamed milk", Available: true, AllowsMilkChoice: true, AllowsCustomizations: true},
	{Name: "Espresso", Description: "A single shot", Available: true, AllowsCustomizations: true},
	{Name: "Flat White", Description: "Double ristretto with microfoam", Available: true, AllowsMilkChoice: true},
	{Name: "Hot Chocolate", Description: "Cocoa with steamed milk", Available: true, AllowsMilkChoice: true, AllowsCustomizations: true},
	{Name: "Latte", Description: "Espresso with plenty of steamed milk", Available: true, AllowsMilkChoice: true, AllowsCustomizations: true},
}

var DefaultMilkOptions = []models.MilkOption{
	{Name: "Almond", Available: true},
	{Name: "Oat", Available: true},
	{Name: "Skim", Available: true},
	{Name: "Soy", Available: true},
	{Name: "Whole", Available: true},
}

var DefaultCustomizations = []models.CustomizationOption{
	{Name: "Caramel Syrup", Available: true},
	{Name: "Decaf", Available: true},
	{Name: "Extra Hot", Available: true},
	{Name: "Extra Shot", Available: true},
	{Name: "Vanilla Syrup", Available: true},
}

// Seed inserts the default catalog into empty tables. Tables that already
// hold rows are left untouched.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedTable(tx, &models.Item{}, cloneSlice(DefaultMenu)); err != nil {
			return err
		}
		if err := seedTable(tx, &models.MilkOption{}, cloneSlice(DefaultMilkOptions)); err != nil {
			return err
		}
		return seedTable(tx, &models.CustomizationOption{}, cloneSlice(DefaultCustomizations))
	})
}

func seedTable[T any](tx *gorm.DB, model any, rows []T) error {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Seeded %d rows into %T", len(rows), model)
	return nil
}

// cloneSlice keeps the package defaults free of the ids gorm writes back.
func cloneSlice[T any](in []T) []T {
	return append([]T(nil), in...)
}
