package service

import (
	"context"
	"errors"
	"sync"

	userserrors "roomly/internal/users/errors"
	"roomly/internal/users/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
	"roomly/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserService interface {
	Register(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error)
}

type userService struct {
	repo     repository.UserRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewUserService(repo repository.UserRepository, cfg *config.Config) UserService {
	return &userService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *userService) Register(ctx context.Context, user *model.User) error {
	user.Username = sanitizer.SanitizeUsername(user.Username)

	if err := s.validate.Struct(user); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := validation.Translate(validationErrs)
			s.cfg.Log.Warn("User validation failed", "error", translated)
			return apperrors.Validation("User validation failed", map[string]any{"error": translated.Error()})
		}
		return apperrors.Internal("Failed to validate user", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateUsername) {
			return apperrors.Conflict("A user with this username already exists")
		}
		s.cfg.Log.Error("Failed to register user", "username", user.Username, "error", err)
		return apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID, "username", user.Username)
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = sanitizer.SanitizeUsername(username)
	if username == "" {
		return nil, apperrors.InvalidInput("Username cannot be empty")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	return user, nil
}

func (s *userService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return users, count, nil
}
