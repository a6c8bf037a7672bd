package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// ActiveStatuses are the statuses that hold a position in the queue.
var ActiveStatuses = []OrderStatus{OrderPending, OrderInProgress}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Active() bool {
	return s == OrderPending || s == OrderInProgress
}

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       string      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	CustomerName string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_queue,priority:1" json:"status"`
	CreatedAt    time.Time   `gorm:"not null;index:idx_orders_queue,priority:2" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
	Lines        []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
