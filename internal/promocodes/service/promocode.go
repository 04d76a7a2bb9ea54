package service

import (
	"context"
	"errors"
	"sync"

	promoerrors "roomly/internal/promocodes/errors"
	"roomly/internal/promocodes/repository"
	"roomly/internal/promocodes/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

type PromoCodeService interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	GetByID(ctx context.Context, id string) (*model.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error)
	Update(ctx context.Context, id string, updates *model.PromoCodeUpdate) error
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type promoCodeService struct {
	repo      repository.PromoCodeRepository
	validator *validator.PromoCodeValidator
	cfg       *config.Config
}

func NewPromoCodeService(repo repository.PromoCodeRepository, validator *validator.PromoCodeValidator, cfg *config.Config) PromoCodeService {
	return &promoCodeService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *promoCodeService) Create(ctx context.Context, promo *model.PromoCode) error {
	promo.Code = sanitizer.SanitizePromoCode(promo.Code)
	// New codes go live immediately; the validity window bounds usage
	promo.Active = true

	if err := s.validate(promo); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		if errors.Is(err, promoerrors.ErrDuplicateCode) {
			return apperrors.Conflict("A promo code with this code already exists")
		}
		s.cfg.Log.Error("Failed to create promo code", "code", promo.Code, "error", err)
		return apperrors.Internal("Failed to create promo code", err)
	}

	s.cfg.Log.Info("Promo code created successfully", "id", promo.ID, "code", promo.Code)
	return nil
}

func (s *promoCodeService) GetByID(ctx context.Context, id string) (*model.PromoCode, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Promo code ID cannot be empty")
	}

	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return promo, nil
}

func (s *promoCodeService) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	code = sanitizer.SanitizePromoCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Promo code cannot be empty")
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, s.mapLookupError(err, code)
	}

	return promo, nil
}

func (s *promoCodeService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error) {
	var count int64
	var promos []*model.PromoCode
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count promo codes", "error", errCount)
			errCount = apperrors.Internal("Failed to count promo codes", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		promos, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list promo codes", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve promo codes", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return promos, count, nil
}

func (s *promoCodeService) Update(ctx context.Context, id string, updates *model.PromoCodeUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Promo code ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Promo code update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergePromoUpdates(existing, updates)
	if err := s.validate(merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, promoerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Promo code", id)
		}
		s.cfg.Log.Error("Failed to update promo code", "id", id, "error", err)
		return apperrors.Internal("Failed to update promo code", err)
	}

	s.cfg.Log.Info("Promo code updated successfully", "id", id)
	return nil
}

func (s *promoCodeService) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *promoCodeService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *promoCodeService) setActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return apperrors.InvalidInput("Promo code ID cannot be empty")
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, promoerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Promo code", id)
		}
		if errors.Is(err, promoerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid promo code ID format")
		}
		s.cfg.Log.Error("Failed to set promo code active flag", "id", id, "active", active, "error", err)
		return apperrors.Internal("Failed to update promo code", err)
	}

	s.cfg.Log.Info("Promo code active flag set", "id", id, "active", active)
	return nil
}

func (s *promoCodeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Promo code ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, promoerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Promo code", id)
		}
		if errors.Is(err, promoerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid promo code ID format")
		}
		s.cfg.Log.Error("Failed to delete promo code", "id", id, "error", err)
		return apperrors.Internal("Failed to delete promo code", err)
	}

	s.cfg.Log.Info("Promo code deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *promoCodeService) mapLookupError(err error, key string) error {
	if errors.Is(err, promoerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Promo code", key)
	}
	if errors.Is(err, promoerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid promo code ID format")
	}
	return apperrors.Internal("Failed to retrieve promo code", err)
}

func (s *promoCodeService) mergePromoUpdates(existing *model.PromoCode, updates *model.PromoCodeUpdate) *model.PromoCode {
	merged := *existing

	if updates.Percent != nil {
		merged.Percent = *updates.Percent
	}
	if updates.ValidFrom != nil {
		merged.ValidFrom = *updates.ValidFrom
	}
	if updates.ValidTo != nil {
		merged.ValidTo = *updates.ValidTo
	}

	return &merged
}

func (s *promoCodeService) validate(promo *model.PromoCode) error {
	if err := s.validator.Validate(promo); err != nil {
		s.cfg.Log.Warn("Promo code validation failed", "error", err)
		return apperrors.Validation("Promo code validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
