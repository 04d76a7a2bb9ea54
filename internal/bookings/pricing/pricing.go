package pricing

import (
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/model"
	"roomly/pkg/money"
)

// BillableHours returns the number of whole hours a booking is charged
// for. Any started hour is billed in full, so 90 minutes bills as 2.
func BillableHours(startAt, endAt time.Time) (int64, error) {
	if !endAt.After(startAt) {
		return 0, bookingserrors.ErrInvalidTimeRange
	}

	duration := endAt.Sub(startAt)
	hours := int64(duration / time.Hour)
	if duration%time.Hour != 0 {
		hours++
	}

	return hours, nil
}

// TotalPrice computes the booking price from the room's current hourly
// rate. The rate is read at pricing time, not at booking time, so a rate
// change is reflected in every later read of the same booking.
func TotalPrice(rate money.Cents, startAt, endAt time.Time) (money.Cents, error) {
	hours, err := BillableHours(startAt, endAt)
	if err != nil {
		return 0, err
	}

	return rate.MulInt64(hours), nil
}

// Discount returns the amount taken off the total for the given promo
// code. On the read path only the code's active flag matters; its
// validity window is checked once, when the booking is created.
func Discount(total money.Cents, promo *model.PromoCode) money.Cents {
	if promo == nil || !promo.Active {
		return 0
	}

	return total.PercentHalfUp(promo.Percent)
}
