package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agrolink/agrolink/internal/storage"
)

type AccountService struct {
	users  storage.UserRepository
	logger *slog.Logger
}

func NewAccountService(users storage.UserRepository, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		logger: serviceLogger(logger, "accounts"),
	}
}

// Register creates a user and returns its id. Unlike every other write,
// registration failures are returned to the caller.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	switch {
	case strings.TrimSpace(req.Email) == "":
		return 0, fmt.Errorf("%w: email is required", ErrValidation)
	case req.Password == "":
		return 0, fmt.Errorf("%w: password is required", ErrValidation)
	case strings.TrimSpace(req.Name) == "":
		return 0, fmt.Errorf("%w: name is required", ErrValidation)
	}

	id, err := s.users.Register(ctx, &storage.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return 0, fmt.Errorf("%w: %s: %w", ErrEmailTaken, req.Email, err)
		}
		s.logger.Error("register user failed", "email", req.Email, "error", err)
		return 0, fmt.Errorf("register user: %w", err)
	}
	s.logger.Info("registered user", "user_id", id)
	return id, nil
}

// Login returns the user whose stored email and password both match, or nil
// when nothing matches. A missing email or password is a validation error;
// lookup failures are logged and reported as no match.
func (s *AccountService) Login(ctx context.Context, email, password string) (*storage.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	user, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("login lookup failed", "email", email, "error", err)
		}
		return nil, nil
	}
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id int64) *storage.User {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("get user failed", "user_id", id, "error", err)
		}
		return nil
	}
	return user
}
