package validator

import (
	"errors"
	"fmt"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if !booking.EndAt.After(booking.StartAt) {
		return fmt.Errorf("%w: EndAt must be after StartAt", bookingserrors.ErrInvalidTimeRange)
	}

	return nil
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if update.StartAt == nil && update.EndAt == nil {
		return validation.FieldErrors{
			validation.FieldError{
				Field:   "StartAt",
				Message: "at least one of start_at or end_at must be provided",
			},
		}
	}

	if update.StartAt != nil && update.EndAt != nil {
		if !update.EndAt.After(*update.StartAt) {
			return fmt.Errorf("%w: EndAt must be after StartAt", bookingserrors.ErrInvalidTimeRange)
		}
	}

	return nil
}
