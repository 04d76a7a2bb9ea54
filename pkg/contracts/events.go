package contracts

import (
	"time"

	"roomly/pkg/model"
)

// Kafka topics shared between the bookings producer and the notifier
const (
	TopicBookingEvents    = "roomly.booking.events"
	TopicBookingEventsDLQ = "roomly.booking.events.dlq"

	NotifierGroupID = "roomly-notifier"
)

// Booking event types carried in the event-type header and payload
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published for every booking state change
type BookingEvent struct {
	EventType  string              `json:"event_type"`
	BookingID  string              `json:"booking_id"`
	UserID     string              `json:"user_id"`
	RoomID     string              `json:"room_id"`
	StartAt    time.Time           `json:"start_at"`
	EndAt      time.Time           `json:"end_at"`
	Status     model.BookingStatus `json:"status"`
	OccurredAt time.Time           `json:"occurred_at"`
}
