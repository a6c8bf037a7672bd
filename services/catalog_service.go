package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/gorm"
)

// CatalogService lists menu entities and toggles their availability.
type CatalogService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewCatalogService(db *gorm.DB, notifier Notifier) *CatalogService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CatalogService{db: db, notifier: notifier, now: utcNow}
}

// SetClock replaces the source of updated_at timestamps.
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

// AvailabilityChange is the payload of EventAvailabilityChanged.
type AvailabilityChange struct {
	Kind      models.CatalogKind `json:"kind"`
	ID        uint               `json:"id"`
	Available bool               `json:"available"`
}

func (s *CatalogService) ListMenuItems(ctx context.Context, includeUnavailable bool) ([]models.Item, error) {
	var items []models.Item
	if err := listCatalog(ctx, s.db, includeUnavailable, &items); err != nil {
		return nil, persistenceError("ListMenuItems", err)
	}
	return items, nil
}

func (s *CatalogService) ListMilkOptions(ctx context.Context, includeUnavailable bool) ([]models.MilkOption, error) {
	var options []models.MilkOption
	if err := listCatalog(ctx, s.db, includeUnavailable, &options); err != nil {
		return nil, persistenceError("ListMilkOptions", err)
	}
	return options, nil
}

func (s *CatalogService) ListCustomizationOptions(ctx context.Context, includeUnavailable bool) ([]models.CustomizationOption, error) {
	var options []models.CustomizationOption
	if err := listCatalog(ctx, s.db, includeUnavailable, &options); err != nil {
		return nil, persistenceError("ListCustomizationOptions", err)
	}
	return options, nil
}

func listCatalog(ctx context.Context, db *gorm.DB, includeUnavailable bool, dest any) error {
	q := db.WithContext(ctx)
	if !includeUnavailable {
		q = q.Where("available = ?", true)
	}
	return q.Order("name ASC").Order("id ASC").Find(dest).Error
}

func (s *CatalogService) UpdateItemAvailability(ctx context.Context, sess *models.Session, id uint, available bool) error {
	return s.setAvailability(ctx, sess, "UpdateItemAvailability", models.KindItem, &models.Item{}, id, available)
}

func (s *CatalogService) UpdateMilkAvailability(ctx context.Context, sess *models.Session, id uint, available bool) error {
	return s.setAvailability(ctx, sess, "UpdateMilkAvailability", models.KindMilkOption, &models.MilkOption{}, id, available)
}

func (s *CatalogService) UpdateCustomizationAvailability(ctx context.Context, sess *models.Session, id uint, available bool) error {
	return s.setAvailability(ctx, sess, "UpdateCustomizationAvailability", models.KindCustomization, &models.CustomizationOption{}, id, available)
}

// setAvailability is idempotent: writing the current value again succeeds.
// Existence is checked separately because MySQL reports zero affected rows
// for an update that does not change the value.
func (s *CatalogService) setAvailability(ctx context.Context, sess *models.Session, op string, kind models.CatalogKind, model any, id uint, available bool) error {
	if !models.IsBaristaUser(sess) {
		return authorizationError(op, reasonBaristaRequired)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFoundError(op, string(kind), id)
		}
		return tx.Model(model).Where("id = ?", id).Updates(map[string]any{
			"available":  available,
			"updated_at": s.now(),
		}).Error
	})
	if err != nil {
		return wrapDB(op, string(kind), id, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"kind":      kind,
		"id":        id,
		"available": available,
		"by":        sess.UserID,
	}).Info("catalog availability updated")

	notify(ctx, s.notifier, EventAvailabilityChanged, AvailabilityChange{Kind: kind, ID: id, Available: available})
	return nil
}
