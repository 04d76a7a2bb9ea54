package model

import (
	"time"

	"roomly/pkg/money"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCanceled  BookingStatus = "CANCELED"
)

// Occupies reports whether a booking in this status still claims its
// time interval. Only cancellation frees the interval.
func (s BookingStatus) Occupies() bool {
	return s != StatusCanceled
}

// Booking is one user's claim on a room for a half-open time interval
// [StartAt, EndAt). Touching endpoints of two bookings do not conflict.
type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string        `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	RoomID    string        `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	PromoCode string        `json:"promo_code,omitempty" bson:"promo_code,omitempty" validate:"omitempty,min=2,max=40"`
	StartAt   time.Time     `json:"start_at" bson:"start_at" validate:"required"`
	EndAt     time.Time     `json:"end_at" bson:"end_at" validate:"required"`
	Status    BookingStatus `json:"status" bson:"status" validate:"required,oneof=PENDING CONFIRMED CANCELED"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingUpdate carries the only fields an owner may change in place.
type BookingUpdate struct {
	StartAt *time.Time `json:"start_at,omitempty" validate:"omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty" validate:"omitempty"`
}

// BookingDetails is the read projection: stored fields composed with
// amounts computed from the room's current rate and the promo code.
type BookingDetails struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Username     string        `json:"username,omitempty"`
	RoomID       string        `json:"room_id"`
	RoomName     string        `json:"room_name,omitempty"`
	RoomLocation string        `json:"room_location,omitempty"`
	StartAt      time.Time     `json:"start_at"`
	EndAt        time.Time     `json:"end_at"`
	Status       BookingStatus `json:"status"`
	TotalPrice   money.Cents   `json:"total_price_cents"`
	Discount     money.Cents   `json:"discount_cents"`
	PromoCode    string        `json:"promo_code,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
