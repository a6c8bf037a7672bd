package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxLineQuantity bounds a single line; the barista board renders one
// completion flag per unit.
const maxLineQuantity = 99

// LineInput is one requested line of a new order.
type LineInput struct {
	ItemID           uint   `json:"item_id"`
	Quantity         int    `json:"quantity"`
	MilkOptionID     *uint  `json:"milk_option_id,omitempty"`
	CustomizationIDs []uint `json:"customization_ids,omitempty"`
}

// OrderCreated is the payload of EventOrderCreated.
type OrderCreated struct {
	OrderID      uint      `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Lines        int       `json:"lines"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderComposer validates submissions and writes the order aggregate.
type OrderComposer struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewOrderComposer(db *gorm.DB, notifier Notifier) *OrderComposer {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderComposer{
		db:       db,
		notifier: notifier,
		now:      utcNow,
	}
}

func utcNow() time.Time { return time.Now().UTC() }

// SetClock replaces the creation-time source.
func (c *OrderComposer) SetClock(now func() time.Time) {
	c.now = now
}

// SubmitOrder persists the order, its lines and their customizations in one
// transaction and returns the new order id. Nothing is visible to readers
// unless every row was written.
func (c *OrderComposer) SubmitOrder(ctx context.Context, userID, customerName string, lines []LineInput) (uint, error) {
	const op = "SubmitOrder"

	customerName = strings.TrimSpace(customerName)
	if err := validateSubmission(userID, customerName, lines); err != nil {
		return 0, err
	}

	var order models.Order
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveLines(tx, lines)
		if err != nil {
			return err
		}

		now := c.now()
		order = models.Order{
			UserID:       userID,
			CustomerName: customerName,
			Status:       models.OrderPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for _, line := range resolved {
			orderItem := models.OrderItem{
				OrderID:      order.ID,
				ItemID:       line.ItemID,
				MilkOptionID: line.MilkOptionID,
				Quantity:     line.Quantity,
				CreatedAt:    now,
			}
			if err := tx.Omit(clause.Associations).Create(&orderItem).Error; err != nil {
				return err
			}

			if len(line.CustomizationIDs) == 0 {
				continue
			}
			rows := make([]models.OrderItemCustomization, 0, len(line.CustomizationIDs))
			for _, id := range line.CustomizationIDs {
				rows = append(rows, models.OrderItemCustomization{
					OrderItemID:           orderItem.ID,
					CustomizationOptionID: id,
				})
			}
			if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == "" {
			utils.ErrorLogger.WithField("customer_name", customerName).Errorf("submit order rolled back: %v", err)
		}
		return 0, wrapDB(op, "order", nil, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"lines":    len(lines),
	}).Info("order submitted")

	notify(ctx, c.notifier, EventOrderCreated, OrderCreated{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Lines:        len(lines),
		CreatedAt:    order.CreatedAt,
	})
	return order.ID, nil
}

func validateSubmission(userID, customerName string, lines []LineInput) error {
	const op = "SubmitOrder"

	if userID == "" {
		return validationError(op, map[string]any{"field": "user_id", "reason": "required"})
	}
	if customerName == "" {
		return validationError(op, map[string]any{"field": "customer_name", "reason": "required"})
	}
	if len(lines) == 0 {
		return validationError(op, map[string]any{"field": "lines", "reason": "empty"})
	}
	for i, line := range lines {
		if line.ItemID == 0 {
			return validationError(op, map[string]any{"field": fmt.Sprintf("lines[%d].item_id", i), "reason": "required"})
		}
		if line.Quantity < 1 {
			return validationError(op, map[string]any{"field": fmt.Sprintf("lines[%d].quantity", i), "reason": "must_be_positive"})
		}
		if line.Quantity > maxLineQuantity {
			return validationError(op, map[string]any{
				"field":  fmt.Sprintf("lines[%d].quantity", i),
				"reason": "too_large",
				"max":    maxLineQuantity,
			})
		}
	}
	return nil
}

// resolveLines checks every reference against the catalog inside the
// submitting transaction and returns the lines with customization ids
// deduplicated.
func resolveLines(tx *gorm.DB, lines []LineInput) ([]LineInput, error) {
	const op = "SubmitOrder"

	var itemIDs, milkIDs, customizationIDs []uint
	for _, line := range lines {
		itemIDs = append(itemIDs, line.ItemID)
		if line.MilkOptionID != nil {
			milkIDs = append(milkIDs, *line.MilkOptionID)
		}
		customizationIDs = append(customizationIDs, line.CustomizationIDs...)
	}

	var items []models.Item
	if err := tx.Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	itemByID := make(map[uint]models.Item, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	milkByID := map[uint]models.MilkOption{}
	if len(milkIDs) > 0 {
		var milks []models.MilkOption
		if err := tx.Where("id IN ?", milkIDs).Find(&milks).Error; err != nil {
			return nil, err
		}
		for _, m := range milks {
			milkByID[m.ID] = m
		}
	}

	customizationByID := map[uint]models.CustomizationOption{}
	if len(customizationIDs) > 0 {
		var options []models.CustomizationOption
		if err := tx.Where("id IN ?", customizationIDs).Find(&options).Error; err != nil {
			return nil, err
		}
		for _, o := range options {
			customizationByID[o.ID] = o
		}
	}

	resolved := make([]LineInput, 0, len(lines))
	for i, line := range lines {
		item, ok := itemByID[line.ItemID]
		if !ok {
			return nil, unresolved(op, models.KindItem, line.ItemID, "missing")
		}
		if !item.Available {
			return nil, unresolved(op, models.KindItem, line.ItemID, "unavailable")
		}

		if line.MilkOptionID != nil {
			if !item.AllowsMilkChoice {
				return nil, validationError(op, map[string]any{
					"field":   fmt.Sprintf("lines[%d].milk_option_id", i),
					"reason":  "milk_choice_not_allowed",
					"item_id": item.ID,
				})
			}
			milk, ok := milkByID[*line.MilkOptionID]
			if !ok {
				return nil, unresolved(op, models.KindMilkOption, *line.MilkOptionID, "missing")
			}
			if !milk.Available {
				return nil, unresolved(op, models.KindMilkOption, milk.ID, "unavailable")
			}
		}

		ids := dedupe(line.CustomizationIDs)
		if len(ids) > 0 && !item.AllowsCustomizations {
			return nil, validationError(op, map[string]any{
				"field":   fmt.Sprintf("lines[%d].customization_ids", i),
				"reason":  "customizations_not_allowed",
				"item_id": item.ID,
			})
		}
		for _, id := range ids {
			option, ok := customizationByID[id]
			if !ok {
				return nil, unresolved(op, models.KindCustomization, id, "missing")
			}
			if !option.Available {
				return nil, unresolved(op, models.KindCustomization, id, "unavailable")
			}
		}

		line.CustomizationIDs = ids
		resolved = append(resolved, line)
	}
	return resolved, nil
}

func unresolved(op string, kind models.CatalogKind, id uint, reason string) *Error {
	e := notFoundError(op, string(kind), id)
	e.Detail["reason"] = reason
	return e
}

func dedupe(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
