package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrRoomNotFound = errors.New("room not found")

	ErrUserNotFound = errors.New("user not found")

	ErrPromoNotFound = errors.New("promo code not found")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrTimeConflict = errors.New("booking interval conflicts with an existing booking")
)
