package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/gorm"
)

// LineDetails is one order line with catalog names resolved at read time.
type LineDetails struct {
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	MilkOption     *string  `json:"milk_option"`
	Customizations []string `json:"customizations"`
}

type OrderDetails struct {
	ID           uint               `json:"id"`
	Status       models.OrderStatus `json:"status"`
	CustomerName string             `json:"customer_name"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Items        []LineDetails      `json:"items"`
}

// BoardLine adds per-unit completion flags for the barista board. The flags
// are never persisted; every read starts them at false.
type BoardLine struct {
	LineDetails
	CompletedInstances []bool `json:"completed_instances"`
}

type OrderSummary struct {
	ID           uint               `json:"id"`
	Status       models.OrderStatus `json:"status"`
	CustomerName string             `json:"customer_name"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Items        []BoardLine        `json:"items"`
}

// StatusChange is the payload of EventOrderStatusChanged and EventOrderCancelled.
type StatusChange struct {
	OrderID  uint               `json:"order_id"`
	Status   models.OrderStatus `json:"status"`
	Previous models.OrderStatus `json:"previous_status"`
}

// OrderQueue answers queue-position questions and applies status changes.
type OrderQueue struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewOrderQueue(db *gorm.DB, notifier Notifier) *OrderQueue {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderQueue{db: db, notifier: notifier, now: utcNow}
}

// SetClock replaces the source of updated_at timestamps.
func (q *OrderQueue) SetClock(now func() time.Time) {
	q.now = now
}

// GetOrdersAheadCount counts active orders ahead of orderID in queue order
// (created_at, then id). Resolved orders have no position and report 0.
// The value is a snapshot; callers poll for changes.
func (q *OrderQueue) GetOrdersAheadCount(ctx context.Context, orderID uint) (int64, error) {
	const op = "GetOrdersAheadCount"

	var order models.Order
	if err := q.db.WithContext(ctx).Select("id", "status", "created_at").First(&order, orderID).Error; err != nil {
		return 0, wrapDB(op, "order", orderID, err)
	}
	if !order.Status.Active() {
		return 0, nil
	}

	var ahead int64
	err := q.db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ?", models.ActiveStatuses).
		Where("created_at < ? OR (created_at = ? AND id < ?)", order.CreatedAt, order.CreatedAt, order.ID).
		Count(&ahead).Error
	if err != nil {
		return 0, persistenceError(op, err)
	}
	return ahead, nil
}

// UpdateOrderStatus sets any of the four statuses. Sequencing is left to
// the barista tooling.
func (q *OrderQueue) UpdateOrderStatus(ctx context.Context, sess *models.Session, orderID uint, status models.OrderStatus) error {
	const op = "UpdateOrderStatus"

	if !models.IsBaristaUser(sess) {
		return authorizationError(op, reasonBaristaRequired)
	}
	if !status.Valid() {
		return validationError(op, map[string]any{"field": "status", "reason": "unknown_status", "value": string(status)})
	}

	var previous models.OrderStatus
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "status").First(&order, orderID).Error; err != nil {
			return err
		}
		previous = order.Status
		return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]any{
			"status":     status,
			"updated_at": q.now(),
		}).Error
	})
	if err != nil {
		return wrapDB(op, "order", orderID, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
		"by":       sess.UserID,
	}).Info("order status updated")

	notify(ctx, q.notifier, EventOrderStatusChanged, StatusChange{OrderID: orderID, Status: status, Previous: previous})
	return nil
}

// CancelOrder moves a pending order to cancelled with a single conditional
// update, so it cannot race a concurrent status change. Customers may only
// cancel their own orders; baristas may cancel any. It returns the number of
// rows changed: 0 means the order had already left pending.
func (q *OrderQueue) CancelOrder(ctx context.Context, sess *models.Session, orderID uint) (int64, error) {
	const op = "CancelOrder"

	if sess == nil || sess.UserID == "" {
		return 0, authorizationError(op, reasonInvalidSession)
	}

	update := q.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderPending)
	if !models.IsBaristaUser(sess) {
		update = update.Where("user_id = ?", sess.UserID)
	}
	res := update.Updates(map[string]any{
		"status":     models.OrderCancelled,
		"updated_at": q.now(),
	})
	if res.Error != nil {
		return 0, persistenceError(op, res.Error)
	}

	if res.RowsAffected == 0 {
		var order models.Order
		err := q.db.WithContext(ctx).Select("id", "user_id").First(&order, orderID).Error
		if err != nil {
			return 0, wrapDB(op, "order", orderID, err)
		}
		if order.UserID != sess.UserID && !models.IsBaristaUser(sess) {
			return 0, authorizationError(op, reasonNotOrderOwner)
		}
		return 0, nil
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"by":       sess.UserID,
	}).Info("order cancelled")
	notify(ctx, q.notifier, EventOrderCancelled, StatusChange{
		OrderID:  orderID,
		Status:   models.OrderCancelled,
		Previous: models.OrderPending,
	})
	return res.RowsAffected, nil
}

func (q *OrderQueue) GetOrderDetails(ctx context.Context, orderID uint) (*OrderDetails, error) {
	var order models.Order
	if err := withLines(q.db.WithContext(ctx)).First(&order, orderID).Error; err != nil {
		return nil, wrapDB("GetOrderDetails", "order", orderID, err)
	}
	details := toDetails(order)
	return &details, nil
}

// GetOrders returns every order, oldest first, for the barista board.
func (q *OrderQueue) GetOrders(ctx context.Context) ([]OrderSummary, error) {
	var orders []models.Order
	if err := withLines(q.db.WithContext(ctx)).Order("created_at ASC").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, persistenceError("GetOrders", err)
	}
	return toSummaries(orders), nil
}

// GetQueue returns only pending and in-progress orders in queue order.
func (q *OrderQueue) GetQueue(ctx context.Context) ([]OrderSummary, error) {
	var orders []models.Order
	err := withLines(q.db.WithContext(ctx)).
		Where("status IN ?", models.ActiveStatuses).
		Order("created_at ASC").Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, persistenceError("GetQueue", err)
	}
	return toSummaries(orders), nil
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Lines.Item").
		Preload("Lines.MilkOption").
		Preload("Lines.Customizations", func(db *gorm.DB) *gorm.DB { return db.Order("order_item_customizations.id ASC") }).
		Preload("Lines.Customizations.CustomizationOption")
}

func toDetails(order models.Order) OrderDetails {
	items := make([]LineDetails, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, toLineDetails(line))
	}
	return OrderDetails{
		ID:           order.ID,
		Status:       order.Status,
		CustomerName: order.CustomerName,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		Items:        items,
	}
}

func toLineDetails(line models.OrderItem) LineDetails {
	var milk *string
	if line.MilkOption != nil {
		name := line.MilkOption.Name
		milk = &name
	}
	customizations := make([]string, 0, len(line.Customizations))
	for _, c := range line.Customizations {
		customizations = append(customizations, c.CustomizationOption.Name)
	}
	return LineDetails{
		Name:           line.Item.Name,
		Quantity:       line.Quantity,
		MilkOption:     milk,
		Customizations: customizations,
	}
}

func toSummaries(orders []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		lines := make([]BoardLine, 0, len(order.Lines))
		for _, line := range order.Lines {
			lines = append(lines, BoardLine{
				LineDetails:        toLineDetails(line),
				CompletedInstances: make([]bool, line.Quantity),
			})
		}
		out = append(out, OrderSummary{
			ID:           order.ID,
			Status:       order.Status,
			CustomerName: order.CustomerName,
			CreatedAt:    order.CreatedAt,
			UpdatedAt:    order.UpdatedAt,
			Items:        lines,
		})
	}
	return out
}
