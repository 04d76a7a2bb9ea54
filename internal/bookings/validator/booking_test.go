package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return &model.Booking{
		UserID:  "507f1f77bcf86cd799439011",
		RoomID:  "507f1f77bcf86cd799439012",
		StartAt: start,
		EndAt:   start.Add(2 * time.Hour),
		Status:  model.StatusPending,
	}
}

func TestValidate_ValidBooking(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validBooking()); err != nil {
		t.Errorf("expected valid booking, got error: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(b *model.Booking)
		field  string
	}{
		{"missing user id", func(b *model.Booking) { b.UserID = "" }, "UserID"},
		{"missing room id", func(b *model.Booking) { b.RoomID = "" }, "RoomID"},
		{"malformed room id", func(b *model.Booking) { b.RoomID = "not-an-object-id" }, "RoomID"},
		{"bad status", func(b *model.Booking) { b.Status = "PAUSED" }, "Status"},
		{"promo code too short", func(b *model.Booking) { b.PromoCode = "x" }, "PromoCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)

			err := v.Validate(b)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention field %s", err.Error(), tt.field)
			}
		})
	}
}

func TestValidate_IntervalOrdering(t *testing.T) {
	v := newTestValidator()

	b := validBooking()
	b.EndAt = b.StartAt

	err := v.Validate(b)
	if err == nil {
		t.Fatal("expected error for zero-length interval, got nil")
	}
	if !strings.Contains(err.Error(), "EndAt") {
		t.Errorf("error %q does not mention EndAt", err.Error())
	}
	if !errors.Is(err, bookingserrors.ErrInvalidTimeRange) {
		t.Errorf("error %v does not wrap ErrInvalidTimeRange", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name    string
		update  *model.BookingUpdate
		wantErr bool
	}{
		{"both fields valid", &model.BookingUpdate{StartAt: &start, EndAt: &end}, false},
		{"start only", &model.BookingUpdate{StartAt: &start}, false},
		{"end only", &model.BookingUpdate{EndAt: &end}, false},
		{"empty update", &model.BookingUpdate{}, true},
		{"end equals start", &model.BookingUpdate{StartAt: &start, EndAt: &start}, true},
		{"end before start", &model.BookingUpdate{StartAt: &end, EndAt: &start}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
