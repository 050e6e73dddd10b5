package service

import (
	"context"
	"strings"

	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/repository"
	"github.com/studai/studai-backend/internal/response"
)

// UserService handles account business logic.
type UserService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, authService *AuthService) *UserService {
	return &UserService{userRepo: userRepo, authService: authService}
}

// GetByIdentifier retrieves a user by username or email.
func (s *UserService) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return s.userRepo.GetByIdentifier(ctx, strings.TrimSpace(identifier))
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Register creates a student account with a hashed password.
// Returns repository.ErrDuplicateUsername or ErrDuplicateEmail on conflict.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	return s.create(ctx, req.Username, req.Email, req.Password, model.RoleStudent)
}

// CreateAdmin creates an administrator account.
func (s *UserService) CreateAdmin(ctx context.Context, username, email, password string) (*model.User, error) {
	return s.create(ctx, username, email, password, model.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, username, email, password string, role model.UserRole) (*model.User, error) {
	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers retrieves users with pagination and an optional search term.
func (s *UserService) ListUsers(ctx context.Context, search string, page, perPage int) ([]model.User, *response.Pagination, error) {
	page, perPage, limit, offset := pageBounds(page, perPage)

	users, total, err := s.userRepo.ListPaginated(ctx, search, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return users, pagination(page, perPage, total), nil
}

// Delete removes a user and drops their session.
func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.authService.ResetSession(ctx, id)
}
