package errors

import "errors"

var (
	ErrNotFound = errors.New("promo code not found")

	ErrInvalidID = errors.New("invalid promo code ID format")

	ErrDuplicateCode = errors.New("promo code already exists")
)
