package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/pricing"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/pkg/config"
	"roomly/pkg/contracts"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/kafka"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetDetails(ctx context.Context, id string) (*model.BookingDetails, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, callerID string, id string, updates *model.BookingUpdate) error
	Cancel(ctx context.Context, callerID string, id string) error
}

// EventPublisher publishes booking lifecycle events. Satisfied by
// kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	refs      repository.ReferenceRepository
	publisher EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	refs repository.ReferenceRepository,
	publisher EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		refs:      refs,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	// The lifecycle always starts at PENDING regardless of what the
	// caller put in the request body.
	booking.Status = model.StatusPending
	booking.PromoCode = sanitizer.SanitizePromoCode(booking.PromoCode)

	if err := s.validate(booking); err != nil {
		return err
	}

	// Advisory lock serializes admission per room across instances
	lockID, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	// Reference reads run inside the transaction so a room hidden or a
	// promo deactivated mid-flight cannot slip past the commit.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		room, err := s.loadRoom(sessCtx, booking.RoomID)
		if err != nil {
			return err
		}
		if !room.Visible {
			return apperrors.Unavailable("Room is not available for booking")
		}

		if _, err := s.loadUser(sessCtx, booking.UserID); err != nil {
			return err
		}

		if booking.PromoCode != "" {
			if err := s.verifyPromoCode(sessCtx, booking.PromoCode); err != nil {
				return err
			}
		}

		if err := s.verifyAvailability(sessCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"room_id", booking.RoomID,
		"start_at", booking.StartAt,
	)
	s.publishEvent(ctx, contracts.EventBookingCreated, booking)
	return nil
}

func (s *bookingService) GetDetails(ctx context.Context, id string) (*model.BookingDetails, error) {
	booking, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	room, err := s.loadRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}

	// A code that has since been deleted simply yields no discount
	var promo *model.PromoCode
	if code := sanitizer.SanitizePromoCode(booking.PromoCode); code != "" {
		promo, err = s.refs.FindPromoCodeByCode(ctx, code)
		if err != nil && !errors.Is(err, bookingserrors.ErrPromoNotFound) {
			return nil, apperrors.Internal("Failed to retrieve promo code", err)
		}
	}

	total, err := pricing.TotalPrice(room.HourlyRate, booking.StartAt, booking.EndAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to price booking", err)
	}

	return &model.BookingDetails{
		ID:           booking.ID,
		UserID:       booking.UserID,
		Username:     user.Username,
		RoomID:       booking.RoomID,
		RoomName:     room.Name,
		RoomLocation: room.Location,
		StartAt:      booking.StartAt,
		EndAt:        booking.EndAt,
		Status:       booking.Status,
		TotalPrice:   total,
		Discount:     pricing.Discount(total, promo),
		PromoCode:    booking.PromoCode,
		CreatedAt:    booking.CreatedAt,
	}, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	return s.list(ctx, limit, offset,
		func(ctx context.Context) (int64, error) { return s.repo.CountByUser(ctx, userID) },
		func(ctx context.Context) ([]*model.Booking, error) { return s.repo.FindByUser(ctx, userID, limit, offset) },
	)
}

func (s *bookingService) ListByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if roomID == "" {
		return nil, 0, apperrors.InvalidInput("Room ID cannot be empty")
	}
	return s.list(ctx, limit, offset,
		func(ctx context.Context) (int64, error) { return s.repo.CountByRoom(ctx, roomID) },
		func(ctx context.Context) ([]*model.Booking, error) { return s.repo.FindByRoom(ctx, roomID, limit, offset) },
	)
}

func (s *bookingService) list(
	ctx context.Context,
	limit int, offset int64,
	count func(ctx context.Context) (int64, error),
	find func(ctx context.Context) ([]*model.Booking, error),
) ([]*model.Booking, int64, error) {
	var total int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = find(ctx)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, total, nil
}

func (s *bookingService) Update(ctx context.Context, callerID string, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != callerID {
		return apperrors.Forbidden("Only the booking owner can modify it")
	}
	if existing.Status == model.StatusCanceled {
		return apperrors.InvalidState("Canceled bookings cannot be modified")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return s.mapValidationErr(err, "Invalid update input")
	}

	merged := s.mergeBookingUpdates(existing, updates)
	if err := s.validate(merged); err != nil {
		return err
	}

	lockID, err := s.acquireRoomLock(ctx, merged.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The booking's own interval must not block its rescheduling
		if err := s.verifyAvailability(sessCtx, merged, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	s.publishEvent(ctx, contracts.EventBookingUpdated, merged)
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, callerID string, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != callerID {
		return apperrors.Forbidden("Only the booking owner can cancel it")
	}
	if existing.Status == model.StatusCanceled {
		return apperrors.InvalidState("Booking is already canceled")
	}

	// The repository write carries its own not-already-canceled guard,
	// so of two racing cancels exactly one matches. MatchedCount 0 here
	// means another request canceled it after our read.
	result, err := s.repo.Cancel(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.InvalidState("Booking is already canceled")
	}
	existing.Status = model.StatusCanceled

	s.cfg.Log.Info("Booking canceled successfully", "id", id)
	s.publishEvent(ctx, contracts.EventBookingCancelled, existing)
	return nil
}

// --- Helpers ---

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.StartAt != nil {
		merged.StartAt = *updates.StartAt
	}
	if updates.EndAt != nil {
		merged.EndAt = *updates.EndAt
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return s.mapValidationErr(err, "Booking validation failed")
	}
	return nil
}

// mapValidationErr keeps interval-ordering failures distinguishable
// from field-level validation failures.
func (s *bookingService) mapValidationErr(err error, message string) error {
	if errors.Is(err, bookingserrors.ErrInvalidTimeRange) {
		return apperrors.InvalidInput("end_at must be after start_at")
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *bookingService) getByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) loadRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.refs.FindRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *bookingService) loadUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.refs.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrUserNotFound) {
			return nil, apperrors.NotFoundWithID("User", userID)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

// verifyPromoCode enforces the admission rule: at creation the code must
// be active and the current time inside [valid_from, valid_to). Later
// reads only consult the active flag when computing the discount.
func (s *bookingService) verifyPromoCode(ctx context.Context, code string) error {
	promo, err := s.refs.FindPromoCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrPromoNotFound) {
			return apperrors.NotFoundWithID("Promo code", code)
		}
		return apperrors.Internal("Failed to retrieve promo code", err)
	}

	if !promo.UsableAt(time.Now()) {
		return apperrors.InvalidInput(fmt.Sprintf("Promo code %q is not currently valid", code))
	}

	return nil
}

func (s *bookingService) verifyAvailability(ctx context.Context, booking *model.Booking, excludeID string) error {
	existing, err := s.repo.FindActiveOverlapping(ctx, booking.RoomID, booking.StartAt, booking.EndAt, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	if len(existing) > 0 {
		b := existing[0]
		return apperrors.Conflict(fmt.Sprintf(
			"Booking interval overlaps with existing booking (%s - %s)",
			b.StartAt.Format(time.RFC3339),
			b.EndAt.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireRoomLock creates an advisory lock so that only one request per
// room runs the availability check and write at a time. Returns the lock
// ID if successful, or conflict error if the lock is already held.
func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID := fmt.Sprintf("room_lock_%s", roomID)

	lock := &model.RoomLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.RoomLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire room lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseRoomLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// publishEvent emits a lifecycle event. Publishing is best effort; the
// booking write has already committed, so failures are only logged.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := contracts.BookingEvent{
		EventType:  eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		RoomID:     booking.RoomID,
		StartAt:    booking.StartAt,
		EndAt:      booking.EndAt,
		Status:     booking.Status,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSource("bookings").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
