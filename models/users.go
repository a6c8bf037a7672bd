package models

import "time"

// User is either an anonymous customer identity or a barista account.
type User struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255)" json:"name"`
	Email       *string   `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Password    string    `gorm:"type:varchar(255)" json:"-"`
	IsAnonymous bool      `gorm:"not null" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
