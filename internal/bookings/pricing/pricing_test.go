package pricing

import (
	"errors"
	"testing"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/model"
	"roomly/pkg/money"
)

func TestBillableHours(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration time.Duration
		want     int64
	}{
		{"exact one hour", time.Hour, 1},
		{"ninety minutes rounds up", 90 * time.Minute, 2},
		{"one minute bills full hour", time.Minute, 1},
		{"one second bills full hour", time.Second, 1},
		{"exact three hours", 3 * time.Hour, 3},
		{"three hours one second", 3*time.Hour + time.Second, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BillableHours(base, base.Add(tt.duration))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BillableHours(%s) = %d, want %d", tt.duration, got, tt.want)
			}
		})
	}
}

func TestBillableHours_InvalidRange(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, end := range []time.Time{base, base.Add(-time.Hour)} {
		_, err := BillableHours(base, end)
		if !errors.Is(err, bookingserrors.ErrInvalidTimeRange) {
			t.Errorf("BillableHours(%v, %v) error = %v, want ErrInvalidTimeRange", base, end, err)
		}
	}
}

func TestTotalPrice(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rate := money.Cents(8000) // 80.00 per hour

	// 90 minutes bills as 2 hours
	got, err := TotalPrice(rate, base, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 16000 {
		t.Errorf("TotalPrice = %d, want 16000", got)
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name  string
		total money.Cents
		promo *model.PromoCode
		want  money.Cents
	}{
		{"no promo", 16000, nil, 0},
		{"inactive promo gives nothing", 16000, &model.PromoCode{Percent: 20, Active: false}, 0},
		{"active promo applies", 16000, &model.PromoCode{Percent: 20, Active: true}, 3200},
		{"half cent rounds up", 1250, &model.PromoCode{Percent: 10, Active: true}, 125},
		{"rounds half away from zero", 333, &model.PromoCode{Percent: 50, Active: true}, 167},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Discount(tt.total, tt.promo); got != tt.want {
				t.Errorf("Discount(%d) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}
