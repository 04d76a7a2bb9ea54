package service

import (
	"context"
	"testing"
	"time"

	userserrors "roomly/internal/users/errors"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type mockUserRepository struct {
	createFunc   func(ctx context.Context, user *model.User) error
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	return []*model.User{}, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestService(repo *mockUserRepository) UserService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second}
	return NewUserService(repo, cfg)
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

func TestRegister_Success(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user := &model.User{Username: "  Dana  ", Email: "dana@example.com"}
	if err := svc.Register(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected user to be persisted")
	}
	if created.Username != "dana" {
		t.Errorf("expected normalized username %q, got %q", "dana", created.Username)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return userserrors.ErrDuplicateUsername
		},
	}
	svc := newTestService(repo)

	err := svc.Register(context.Background(), &model.User{Username: "dana"})
	assertCode(t, err, apperrors.CodeConflict)
}

func TestRegister_Invalid(t *testing.T) {
	svc := newTestService(&mockUserRepository{})

	tests := []struct {
		name string
		user *model.User
	}{
		{"short username", &model.User{Username: "ab"}},
		{"bad email", &model.User{Username: "dana", Email: "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, svc.Register(context.Background(), tt.user), apperrors.CodeValidation)
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockUserRepository{})

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439099")
	assertCode(t, err, apperrors.CodeNotFound)
}
