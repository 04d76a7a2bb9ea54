package integrationtests

import (
	"context"
	"testing"
	"time"

	"roomly/internal/bookings/repository"
	"roomly/pkg/client"
	"roomly/pkg/config"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/test/integration/testutil"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	roomID      = "665f1f77bcf86cd799439001"
	otherRoomID = "665f1f77bcf86cd799439002"
	userID      = "665f1f77bcf86cd799439003"
)

func newTestConfig(helper *testutil.MongoHelper) *config.Config {
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "bookings-integration-tests",
	})
	return &config.Config{
		MongoDatabaseName: helper.DBName,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		RoomLockTTL:       5 * time.Second,
		Log:               log,
		Client:            &client.Client{Mongo: helper.Client},
	}
}

func seedBooking(t *testing.T, repo repository.BookingRepository, room string, start, end time.Time, status model.BookingStatus) *model.Booking {
	t.Helper()
	booking := &model.Booking{
		UserID:  userID,
		RoomID:  room,
		StartAt: start,
		EndAt:   end,
		Status:  status,
	}
	if err := repo.Create(context.Background(), booking); err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}
	return booking
}

func TestFindActiveOverlapping(t *testing.T) {
	helper := testutil.NewMongoHelper(t)
	defer helper.Close(t)
	helper.CleanCollection(t, testutil.BookingsCollection)

	cfg := newTestConfig(helper)
	repo := repository.NewMongoBookingRepository(cfg)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	confirmed := seedBooking(t, repo, roomID, base, base.Add(2*time.Hour), model.StatusConfirmed)
	seedBooking(t, repo, roomID, base.Add(-3*time.Hour), base.Add(-1*time.Hour), model.StatusPending)
	seedBooking(t, repo, roomID, base, base.Add(2*time.Hour), model.StatusCanceled)
	seedBooking(t, repo, otherRoomID, base, base.Add(2*time.Hour), model.StatusConfirmed)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		excludeID string
		want      int
	}{
		{
			name:  "overlapping window finds the confirmed booking",
			start: base.Add(time.Hour),
			end:   base.Add(3 * time.Hour),
			want:  1,
		},
		{
			name:  "touching end against start does not conflict",
			start: base.Add(2 * time.Hour),
			end:   base.Add(4 * time.Hour),
			want:  0,
		},
		{
			name:  "touching start against end does not conflict",
			start: base.Add(-1 * time.Hour),
			end:   base,
			want:  0,
		},
		{
			name:  "window covering canceled booking only the live one counts",
			start: base.Add(-30 * time.Minute),
			end:   base.Add(30 * time.Minute),
			want:  1,
		},
		{
			name:      "excluding own id frees the interval",
			start:     base,
			end:       base.Add(2 * time.Hour),
			excludeID: confirmed.ID,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindActiveOverlapping(ctx, roomID, tt.start, tt.end, tt.excludeID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(found) != tt.want {
				t.Errorf("expected %d overlapping bookings, got %d", tt.want, len(found))
			}
		})
	}
}

func TestRoomLockMutualExclusion(t *testing.T) {
	helper := testutil.NewMongoHelper(t)
	defer helper.Close(t)
	helper.CleanCollection(t, testutil.RoomLocksCollection)

	cfg := newTestConfig(helper)
	lockRepo := repository.NewRoomLockRepository(cfg)
	ctx := context.Background()

	lock := &model.RoomLock{
		ID:        "room_lock_" + roomID,
		ExpiresAt: time.Now().Add(cfg.RoomLockTTL),
	}
	if _, err := lockRepo.Create(ctx, lock); err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}

	// Same room, second holder: the unique _id index must reject it
	_, err := lockRepo.Create(ctx, &model.RoomLock{
		ID:        "room_lock_" + roomID,
		ExpiresAt: time.Now().Add(cfg.RoomLockTTL),
	})
	if err == nil {
		t.Fatal("expected duplicate key error for held lock, got nil")
	}
	if !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	// A different room locks independently
	if _, err := lockRepo.Create(ctx, &model.RoomLock{
		ID:        "room_lock_" + otherRoomID,
		ExpiresAt: time.Now().Add(cfg.RoomLockTTL),
	}); err != nil {
		t.Fatalf("failed to acquire lock for different room: %v", err)
	}

	// Release and re-acquire
	if err := lockRepo.Delete(ctx, "room_lock_"+roomID); err != nil {
		t.Fatalf("failed to release lock: %v", err)
	}
	if _, err := lockRepo.Create(ctx, &model.RoomLock{
		ID:        "room_lock_" + roomID,
		ExpiresAt: time.Now().Add(cfg.RoomLockTTL),
	}); err != nil {
		t.Fatalf("failed to re-acquire released lock: %v", err)
	}
}
