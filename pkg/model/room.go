package model

import (
	"time"

	"roomly/pkg/money"
)

// Room is the bookable resource. Name is unique across the catalog.
// A room with Visible=false rejects new bookings but existing bookings
// on it stay valid.
type Room struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string      `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location    string      `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Capacity    int         `json:"capacity" bson:"capacity" validate:"required,min=1,max=1000"`
	HourlyRate  money.Cents `json:"hourly_rate_cents" bson:"hourly_rate_cents" validate:"required,min=1"`
	Description string      `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Visible     bool        `json:"visible" bson:"visible"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomUpdate struct {
	Name        string       `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location    string       `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
	Capacity    *int         `json:"capacity,omitempty" validate:"omitempty,min=1,max=1000"`
	HourlyRate  *money.Cents `json:"hourly_rate_cents,omitempty" validate:"omitempty,min=1"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=2000"`
}
