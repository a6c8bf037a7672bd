package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/cafe-queue/utils"
)

// Event names published after a state change is committed.
const (
	EventOrderCreated        = "order.created"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderCancelled      = "order.cancelled"
	EventAvailabilityChanged = "catalog.availability_changed"
)

// Notifier receives committed state changes. Implementations: the websocket
// hub in kds and the rabbitmq publisher in messaging.
type Notifier interface {
	Publish(ctx context.Context, event string, data any) error
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, any) error { return nil }

// FanOut delivers each event to every notifier.
type FanOut []Notifier

func (f FanOut) Publish(ctx context.Context, event string, data any) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, event, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// notify never fails the calling operation; the change is already committed.
func notify(ctx context.Context, n Notifier, event string, data any) {
	if err := n.Publish(ctx, event, data); err != nil {
		utils.ErrorLogger.WithField("event", event).Errorf("failed to publish event: %v", err)
	}
}
