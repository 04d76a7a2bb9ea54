package service

import (
	"context"
	"testing"
	"time"

	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockRoomRepository struct {
	createFunc  func(ctx context.Context, room *model.Room) error
	findByIDFunc func(ctx context.Context, id string) (*model.Room, error)
	updateFunc  func(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error)
	countFunc   func(ctx context.Context) (int64, error)
	findAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = "507f1f77bcf86cd799439012"
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindByName(ctx context.Context, name string) (*model.Room, error) {
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, room)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	return roomserrors.ErrNotFound
}

func newTestService(repo *mockRoomRepository) RoomService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second}
	return NewRoomService(repo, validator.NewRoomValidator(log), cfg)
}

func validRoom() *model.Room {
	return &model.Room{
		Name:       "Atlas",
		Location:   "Floor 3, West Wing",
		Capacity:   8,
		HourlyRate: 8000,
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

func TestCreate_Success(t *testing.T) {
	var created *model.Room
	repo := &mockRoomRepository{
		createFunc: func(ctx context.Context, room *model.Room) error {
			created = room
			return nil
		},
	}
	svc := newTestService(repo)

	room := validRoom()
	room.Name = "  Atlas   Room "
	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected room to be persisted")
	}
	if created.Name != "Atlas Room" {
		t.Errorf("expected sanitized name %q, got %q", "Atlas Room", created.Name)
	}
	if !created.Visible {
		t.Error("new rooms must start visible")
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockRoomRepository{
		createFunc: func(ctx context.Context, room *model.Room) error {
			return roomserrors.ErrDuplicateName
		},
	}
	svc := newTestService(repo)

	err := svc.Create(context.Background(), validRoom())
	assertCode(t, err, apperrors.CodeConflict)
}

func TestCreate_InvalidRoom(t *testing.T) {
	svc := newTestService(&mockRoomRepository{})

	tests := []struct {
		name   string
		mutate func(r *model.Room)
	}{
		{"missing name", func(r *model.Room) { r.Name = "" }},
		{"zero capacity", func(r *model.Room) { r.Capacity = 0 }},
		{"zero rate", func(r *model.Room) { r.HourlyRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := validRoom()
			tt.mutate(room)
			assertCode(t, svc.Create(context.Background(), room), apperrors.CodeValidation)
		})
	}
}

func TestToggleVisibility(t *testing.T) {
	stored := validRoom()
	stored.ID = "507f1f77bcf86cd799439012"
	stored.Visible = true

	var updated *model.Room
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return stored, nil
		},
		updateFunc: func(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
			updated = room
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(repo)

	room, err := svc.ToggleVisibility(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.Visible {
		t.Error("expected visibility to flip to false")
	}
	if updated == nil || updated.Visible {
		t.Error("expected the hidden state to be persisted")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockRoomRepository{})

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439099")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	stored := validRoom()
	stored.ID = "507f1f77bcf86cd799439012"
	stored.Visible = true

	var updated *model.Room
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return stored, nil
		},
		updateFunc: func(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
			updated = room
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(repo)

	rate := stored.HourlyRate * 2
	err := svc.Update(context.Background(), stored.ID, &model.RoomUpdate{HourlyRate: &rate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated == nil {
		t.Fatal("expected room to be updated")
	}
	if updated.HourlyRate != rate {
		t.Errorf("expected rate %d, got %d", rate, updated.HourlyRate)
	}
	if updated.Name != stored.Name || updated.Capacity != stored.Capacity {
		t.Error("untouched fields must keep their stored values")
	}
}
