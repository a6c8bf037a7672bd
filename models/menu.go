package models

import "time"

// Item is a drink or food entry on the café menu.
type Item struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	Available            bool      `gorm:"not null" json:"available"`
	AllowsMilkChoice     bool      `gorm:"not null;default:false" json:"allows_milk_choice"`
	AllowsCustomizations bool      `gorm:"not null;default:false" json:"allows_customizations"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

type MilkOption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Available bool      `gorm:"not null" json:"available"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type CustomizationOption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Available bool      `gorm:"not null" json:"available"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// CatalogKind names one of the three toggleable catalog tables.
type CatalogKind string

const (
	KindItem          CatalogKind = "item"
	KindMilkOption    CatalogKind = "milk_option"
	KindCustomization CatalogKind = "customization_option"
)
