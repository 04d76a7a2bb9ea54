package service

import (
	"context"
	"testing"
	"time"

	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "roomly/internal/bookings/errors"
)

const (
	testUserID  = "507f1f77bcf86cd799439011"
	testRoomID  = "507f1f77bcf86cd799439012"
	testOtherID = "507f1f77bcf86cd799439013"
	testBookID  = "507f1f77bcf86cd799439014"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	createFunc                func(ctx context.Context, booking *model.Booking) error
	findByIDFunc              func(ctx context.Context, id string) (*model.Booking, error)
	findActiveOverlappingFunc func(ctx context.Context, roomID string, startAt, endAt time.Time, excludeID string) ([]*model.Booking, error)
	updateFunc                func(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	cancelFunc                func(ctx context.Context, id string) (*mongo.UpdateResult, error)
	countByUserFunc           func(ctx context.Context, userID string) (int64, error)
	findByUserFunc            func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = testBookID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindActiveOverlapping(ctx context.Context, roomID string, startAt, endAt time.Time, excludeID string) ([]*model.Booking, error) {
	if m.findActiveOverlappingFunc != nil {
		return m.findActiveOverlappingFunc(ctx, roomID, startAt, endAt, excludeID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepository) Cancel(ctx context.Context, id string) (*mongo.UpdateResult, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockRoomLockRepository struct {
	createFunc func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockRoomLockRepository) Create(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockRoomLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockReferenceRepository struct {
	findRoomFunc  func(ctx context.Context, id string) (*model.Room, error)
	findUserFunc  func(ctx context.Context, id string) (*model.User, error)
	findPromoFunc func(ctx context.Context, code string) (*model.PromoCode, error)
}

func (m *mockReferenceRepository) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findRoomFunc != nil {
		return m.findRoomFunc(ctx, id)
	}
	return &model.Room{ID: id, Name: "Atlas", Location: "Floor 3", Capacity: 8, HourlyRate: 8000, Visible: true}, nil
}

func (m *mockReferenceRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	if m.findUserFunc != nil {
		return m.findUserFunc(ctx, id)
	}
	return &model.User{ID: id, Username: "dana"}, nil
}

func (m *mockReferenceRepository) FindPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	if m.findPromoFunc != nil {
		return m.findPromoFunc(ctx, code)
	}
	return nil, bookingserrors.ErrPromoNotFound
}

type mockPublisher struct {
	published []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

func newTestService(repo repository.BookingRepository, locks repository.RoomLockRepository, refs repository.ReferenceRepository, pub EventPublisher) BookingService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:         log,
		RoomLockTTL: 10 * time.Second,
		ReadTimeout: 5 * time.Second,
	}
	return NewBookingService(repo, locks, refs, pub, validator.NewBookingValidator(log), cfg)
}

func newBookingAt(start time.Time, d time.Duration) *model.Booking {
	return &model.Booking{
		UserID:  testUserID,
		RoomID:  testRoomID,
		StartAt: start,
		EndAt:   start.Add(d),
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

// intervalsOverlap mirrors the repository's half-open window filter so
// mocks behave like the store
func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	pub := &mockPublisher{}
	var created *model.Booking

	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, b *model.Booking) error {
			b.ID = testBookID
			created = b
			return nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, pub)

	booking := newBookingAt(start, 2*time.Hour)
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected booking to be persisted")
	}
	if created.Status != model.StatusPending {
		t.Errorf("expected status PENDING, got %s", created.Status)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.published))
	}
	if got := pub.published[0].GetEventType(); got != "booking.created" {
		t.Errorf("expected event type booking.created, got %s", got)
	}
}

func TestCreate_OverlapConflict(t *testing.T) {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	existing := newBookingAt(start, time.Hour)
	existing.ID = testOtherID

	createCalled := false
	repo := &mockBookingRepository{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, s, e time.Time, excludeID string) ([]*model.Booking, error) {
			if intervalsOverlap(existing.StartAt, existing.EndAt, s, e) {
				return []*model.Booking{existing}, nil
			}
			return nil, nil
		},
		createFunc: func(ctx context.Context, b *model.Booking) error {
			createCalled = true
			return nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	err := svc.Create(context.Background(), newBookingAt(start.Add(30*time.Minute), time.Hour))
	assertCode(t, err, apperrors.CodeConflict)
	if createCalled {
		t.Error("booking must not be created when the interval conflicts")
	}
}

func TestCreate_TouchingIntervalsDoNotConflict(t *testing.T) {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	existing := newBookingAt(start, time.Hour) // 10:00 - 11:00
	existing.ID = testOtherID

	repo := &mockBookingRepository{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, s, e time.Time, excludeID string) ([]*model.Booking, error) {
			if intervalsOverlap(existing.StartAt, existing.EndAt, s, e) {
				return []*model.Booking{existing}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	// 11:00 - 12:00 starts exactly where the existing booking ends
	if err := svc.Create(context.Background(), newBookingAt(start.Add(time.Hour), time.Hour)); err != nil {
		t.Fatalf("touching intervals must not conflict, got: %v", err)
	}
}

func TestCreate_HiddenRoom(t *testing.T) {
	refs := &mockReferenceRepository{
		findRoomFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Basement", HourlyRate: 5000, Visible: false}, nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, refs, nil)

	err := svc.Create(context.Background(), newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour))
	assertCode(t, err, apperrors.CodeUnavailable)
}

func TestCreate_RoomNotFound(t *testing.T) {
	refs := &mockReferenceRepository{
		findRoomFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return nil, bookingserrors.ErrRoomNotFound
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, refs, nil)

	err := svc.Create(context.Background(), newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour))
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreate_InvalidInterval(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	booking := newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour)
	booking.EndAt = booking.StartAt

	err := svc.Create(context.Background(), booking)
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestCreate_ClientStatusIgnored(t *testing.T) {
	var created *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, b *model.Booking) error {
			created = b
			return nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	booking := newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour)
	booking.Status = model.StatusCanceled

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected booking to be persisted")
	}
	if created.Status != model.StatusPending {
		t.Errorf("client-supplied status leaked through, got %s", created.Status)
	}
}

func TestCreate_ReferenceReadsUseTransactionContext(t *testing.T) {
	inSession := func(ctx context.Context) bool {
		_, ok := ctx.(mongo.SessionContext)
		return ok
	}

	roomInTx, userInTx, promoInTx := false, false, false
	now := time.Now()
	refs := &mockReferenceRepository{
		findRoomFunc: func(ctx context.Context, id string) (*model.Room, error) {
			roomInTx = inSession(ctx)
			return &model.Room{ID: id, Name: "Atlas", HourlyRate: 8000, Visible: true}, nil
		},
		findUserFunc: func(ctx context.Context, id string) (*model.User, error) {
			userInTx = inSession(ctx)
			return &model.User{ID: id, Username: "dana"}, nil
		},
		findPromoFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			promoInTx = inSession(ctx)
			return &model.PromoCode{Code: code, Percent: 10, ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true}, nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, refs, nil)

	booking := newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour)
	booking.PromoCode = "SPRING10"

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !roomInTx {
		t.Error("room read ran outside the transaction")
	}
	if !userInTx {
		t.Error("user read ran outside the transaction")
	}
	if !promoInTx {
		t.Error("promo read ran outside the transaction")
	}
}

func TestCreate_PromoCodeCanonicalized(t *testing.T) {
	now := time.Now()
	lookedUp := ""
	refs := &mockReferenceRepository{
		findPromoFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			lookedUp = code
			return &model.PromoCode{Code: code, Percent: 10, ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true}, nil
		},
	}
	var created *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, b *model.Booking) error {
			created = b
			return nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, refs, nil)

	booking := newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour)
	booking.PromoCode = "  spring-10 "

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookedUp != "SPRING10" {
		t.Errorf("promo lookup used %q, want SPRING10", lookedUp)
	}
	if created == nil || created.PromoCode != "SPRING10" {
		t.Error("expected the canonical code to be persisted")
	}
}

func TestCreate_PromoValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		promo    *model.PromoCode
		findErr  error
		wantCode string
	}{
		{
			name:    "unknown code",
			findErr: bookingserrors.ErrPromoNotFound, wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "inactive code",
			promo:    &model.PromoCode{Code: "SPRING10", Percent: 10, ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: false},
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "expired window",
			promo:    &model.PromoCode{Code: "SPRING10", Percent: 10, ValidFrom: now.Add(-48 * time.Hour), ValidTo: now.Add(-24 * time.Hour), Active: true},
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "window not started",
			promo:    &model.PromoCode{Code: "SPRING10", Percent: 10, ValidFrom: now.Add(24 * time.Hour), ValidTo: now.Add(48 * time.Hour), Active: true},
			wantCode: apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := &mockReferenceRepository{
				findPromoFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
					if tt.findErr != nil {
						return nil, tt.findErr
					}
					return tt.promo, nil
				},
			}
			svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, refs, nil)

			booking := newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour)
			booking.PromoCode = "SPRING10"

			err := svc.Create(context.Background(), booking)
			assertCode(t, err, tt.wantCode)
		})
	}
}

func TestCreate_RoomLockHeld(t *testing.T) {
	locks := &mockRoomLockRepository{
		createFunc: func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
			return nil, duplicateKeyErr()
		},
	}
	svc := newTestService(&mockBookingRepository{}, locks, &mockReferenceRepository{}, nil)

	err := svc.Create(context.Background(), newBookingAt(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), time.Hour))
	assertCode(t, err, apperrors.CodeConflict)
}

func TestCreate_ReleasesLockAfterConflict(t *testing.T) {
	released := ""
	locks := &mockRoomLockRepository{
		deleteFunc: func(ctx context.Context, lockID string) error {
			released = lockID
			return nil
		},
	}
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	existing := newBookingAt(start, time.Hour)
	repo := &mockBookingRepository{
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, s, e time.Time, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
	}
	svc := newTestService(repo, locks, &mockReferenceRepository{}, nil)

	_ = svc.Create(context.Background(), newBookingAt(start, time.Hour))
	if released == "" {
		t.Error("room lock must be released even when admission fails")
	}
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func storedBooking(status model.BookingStatus) *model.Booking {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:      testBookID,
		UserID:  testUserID,
		RoomID:  testRoomID,
		StartAt: start,
		EndAt:   start.Add(time.Hour),
		Status:  status,
	}
}

func TestUpdate_NotOwner(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.StatusPending), nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	newEnd := time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC)
	err := svc.Update(context.Background(), testOtherID, testBookID, &model.BookingUpdate{EndAt: &newEnd})
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestUpdate_CanceledBooking(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.StatusCanceled), nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	newEnd := time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC)
	err := svc.Update(context.Background(), testUserID, testBookID, &model.BookingUpdate{EndAt: &newEnd})
	assertCode(t, err, apperrors.CodeInvalidState)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	newEnd := time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC)
	err := svc.Update(context.Background(), testUserID, testBookID, &model.BookingUpdate{EndAt: &newEnd})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUpdate_ExcludesOwnInterval(t *testing.T) {
	stored := storedBooking(model.StatusPending)
	var updated *model.Booking

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return stored, nil
		},
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, s, e time.Time, excludeID string) ([]*model.Booking, error) {
			// The store excludes the booking being modified by _id
			if excludeID == stored.ID {
				return nil, nil
			}
			if intervalsOverlap(stored.StartAt, stored.EndAt, s, e) {
				return []*model.Booking{stored}, nil
			}
			return nil, nil
		},
		updateFunc: func(ctx context.Context, id string, b *model.Booking) (*mongo.UpdateResult, error) {
			updated = b
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, pub)

	// Extend within the original window; only the booking itself overlaps
	newEnd := stored.StartAt.Add(30 * time.Minute)
	err := svc.Update(context.Background(), testUserID, testBookID, &model.BookingUpdate{EndAt: &newEnd})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated == nil || !updated.EndAt.Equal(newEnd) {
		t.Error("expected booking end time to be updated")
	}
	if len(pub.published) != 1 || pub.published[0].GetEventType() != "booking.updated" {
		t.Error("expected a booking.updated event")
	}
}

func TestUpdate_ConflictWithOtherBooking(t *testing.T) {
	stored := storedBooking(model.StatusPending)
	other := newBookingAt(stored.EndAt, time.Hour) // 11:00 - 12:00
	other.ID = testOtherID

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return stored, nil
		},
		findActiveOverlappingFunc: func(ctx context.Context, roomID string, s, e time.Time, excludeID string) ([]*model.Booking, error) {
			if intervalsOverlap(other.StartAt, other.EndAt, s, e) {
				return []*model.Booking{other}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	// Extending into the neighboring booking must fail
	newEnd := stored.EndAt.Add(30 * time.Minute)
	err := svc.Update(context.Background(), testUserID, testBookID, &model.BookingUpdate{EndAt: &newEnd})
	assertCode(t, err, apperrors.CodeConflict)
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_Success(t *testing.T) {
	canceledID := ""
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.StatusConfirmed), nil
		},
		cancelFunc: func(ctx context.Context, id string) (*mongo.UpdateResult, error) {
			canceledID = id
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, pub)

	if err := svc.Cancel(context.Background(), testUserID, testBookID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canceledID != testBookID {
		t.Errorf("canceled booking %q, want %q", canceledID, testBookID)
	}
	if len(pub.published) != 1 || pub.published[0].GetEventType() != "booking.cancelled" {
		t.Error("expected a booking.cancelled event")
	}
}

// Both sides of a concurrent double cancel read CONFIRMED, but the
// guarded write matches only once. The loser must fail, not silently
// succeed.
func TestCancel_LosesRaceToConcurrentCancel(t *testing.T) {
	pub := &mockPublisher{}
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.StatusConfirmed), nil
		},
		cancelFunc: func(ctx context.Context, id string) (*mongo.UpdateResult, error) {
			return &mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, pub)

	err := svc.Cancel(context.Background(), testUserID, testBookID)
	assertCode(t, err, apperrors.CodeInvalidState)
	if len(pub.published) != 0 {
		t.Error("losing cancel must not publish an event")
	}
}

func TestCancel_NotOwner(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.StatusPending), nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	err := svc.Cancel(context.Background(), testOtherID, testBookID)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestCancel_AlreadyCanceled(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.StatusCanceled), nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	err := svc.Cancel(context.Background(), testUserID, testBookID)
	assertCode(t, err, apperrors.CodeInvalidState)
}

// ────────────────────────────────────────────────
// GetDetails
// ────────────────────────────────────────────────

func TestGetDetails_Pricing(t *testing.T) {
	// 90 minutes at 80.00/hour bills as 2 full hours
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	stored := &model.Booking{
		ID:        testBookID,
		UserID:    testUserID,
		RoomID:    testRoomID,
		PromoCode: "SPRING20",
		StartAt:   start,
		EndAt:     start.Add(90 * time.Minute),
		Status:    model.StatusConfirmed,
	}

	tests := []struct {
		name         string
		promo        *model.PromoCode
		promoErr     error
		wantDiscount int64
	}{
		{"active promo", &model.PromoCode{Code: "SPRING20", Percent: 20, Active: true}, nil, 3200},
		{"deactivated promo", &model.PromoCode{Code: "SPRING20", Percent: 20, Active: false}, nil, 0},
		{"deleted promo", nil, bookingserrors.ErrPromoNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
					return stored, nil
				},
			}
			refs := &mockReferenceRepository{
				findPromoFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
					if tt.promoErr != nil {
						return nil, tt.promoErr
					}
					return tt.promo, nil
				},
			}
			svc := newTestService(repo, &mockRoomLockRepository{}, refs, nil)

			details, err := svc.GetDetails(context.Background(), testBookID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if int64(details.TotalPrice) != 16000 {
				t.Errorf("expected total 16000, got %d", details.TotalPrice)
			}
			if int64(details.Discount) != tt.wantDiscount {
				t.Errorf("expected discount %d, got %d", tt.wantDiscount, details.Discount)
			}
			if details.RoomName != "Atlas" || details.Username != "dana" {
				t.Errorf("expected room and user names in details, got %q / %q", details.RoomName, details.Username)
			}
		})
	}
}

// Bookings written before codes were canonicalized on attach may still
// carry a raw code. The read path must look up the canonical form.
func TestGetDetails_CanonicalizesStoredPromoCode(t *testing.T) {
	stored := storedBooking(model.StatusConfirmed)
	stored.PromoCode = "spring-20"

	lookedUp := ""
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return stored, nil
		},
	}
	refs := &mockReferenceRepository{
		findPromoFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			lookedUp = code
			return &model.PromoCode{Code: code, Percent: 20, Active: true}, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, refs, nil)

	if _, err := svc.GetDetails(context.Background(), testBookID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookedUp != "SPRING20" {
		t.Errorf("promo lookup used %q, want SPRING20", lookedUp)
	}
}

// ────────────────────────────────────────────────
// Lists
// ────────────────────────────────────────────────

func TestListByUser_ConcurrentCountAndFind(t *testing.T) {
	repo := &mockBookingRepository{
		countByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findByUserFunc: func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Booking{storedBooking(model.StatusPending)}, nil
		},
	}
	svc := newTestService(repo, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	for i := 0; i < 10; i++ {
		bookings, total, err := svc.ListByUser(context.Background(), testUserID, 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if total != 42 {
			t.Errorf("iteration %d: expected total 42, got %d", i, total)
		}
		if len(bookings) != 1 {
			t.Errorf("iteration %d: expected 1 booking, got %d", i, len(bookings))
		}
	}
}

func TestListByUser_EmptyID(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockRoomLockRepository{}, &mockReferenceRepository{}, nil)

	_, _, err := svc.ListByUser(context.Background(), "", 10, 0)
	assertCode(t, err, apperrors.CodeInvalidInput)
}
