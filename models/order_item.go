package models

import "time"

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order          Order                    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID         uint                     `gorm:"not null;index" json:"item_id"`
	Item           Item                     `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"item"`
	MilkOptionID   *uint                    `gorm:"index" json:"milk_option_id,omitempty"`
	MilkOption     *MilkOption              `gorm:"foreignKey:MilkOptionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"milk_option,omitempty"`
	Quantity       int                      `gorm:"not null" json:"quantity"`
	Customizations []OrderItemCustomization `gorm:"foreignKey:OrderItemID" json:"customizations"`
	CreatedAt      time.Time                `gorm:"not null" json:"created_at"`
}

type OrderItemCustomization struct {
	ID                    uint                `gorm:"primaryKey" json:"id"`
	OrderItemID           uint                `gorm:"not null;index" json:"order_item_id"`
	OrderItem             OrderItem           `gorm:"foreignKey:OrderItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CustomizationOptionID uint                `gorm:"not null;index" json:"customization_option_id"`
	CustomizationOption   CustomizationOption `gorm:"foreignKey:CustomizationOptionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"customization_option"`
}
