package validator

import (
	"errors"

	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type PromoCodeValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPromoCodeValidator(log *logger.Logger) *PromoCodeValidator {
	return &PromoCodeValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *PromoCodeValidator) Validate(promo *model.PromoCode) error {
	if err := v.validate.Struct(promo); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *PromoCodeValidator) ValidateUpdate(update *model.PromoCodeUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if update.ValidFrom != nil && update.ValidTo != nil {
		if !update.ValidTo.After(*update.ValidFrom) {
			return validation.FieldErrors{
				validation.FieldError{
					Field:   "ValidTo",
					Message: "valid_to must be after valid_from",
				},
			}
		}
	}

	return nil
}
