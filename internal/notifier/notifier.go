// Package notifier consumes booking events and emits user-facing
// notifications. Delivery is currently a structured log line per event;
// the handler is the integration point for email or push providers.
package notifier

import (
	"context"
	"fmt"

	"roomly/pkg/contracts"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
)

type Notifier struct {
	log *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// HandleBookingEvent is the kafka.MessageHandler for the booking events topic.
func (n *Notifier) HandleBookingEvent(ctx context.Context, msg kafka.Message) error {
	var event contracts.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		// A payload that cannot be decoded will never succeed on retry
		return kafka.NewPermanentError("failed to decode booking event", err)
	}

	if event.BookingID == "" {
		return kafka.NewPermanentError("booking event missing booking_id", nil)
	}

	n.log.Info("notifying user of booking event",
		"event_type", event.EventType,
		"booking_id", event.BookingID,
		"user_id", event.UserID,
		"room_id", event.RoomID,
	)

	switch event.EventType {
	case contracts.EventBookingCreated:
		n.notify(event, "Your booking has been created")
	case contracts.EventBookingUpdated:
		n.notify(event, "Your booking has been updated")
	case contracts.EventBookingCancelled:
		n.notify(event, "Your booking has been cancelled")
	default:
		return kafka.NewPermanentError(fmt.Sprintf("unknown booking event type: %s", event.EventType), nil)
	}

	return nil
}

func (n *Notifier) notify(event contracts.BookingEvent, message string) {
	n.log.Info("notification delivered",
		"user_id", event.UserID,
		"booking_id", event.BookingID,
		"message", message,
		"start_at", event.StartAt,
		"end_at", event.EndAt,
		"status", event.Status,
	)
}
