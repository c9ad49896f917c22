package user

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrInvalidUser       = errors.New("invalid user")
)

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new user with a bcrypt-hashed password
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return nil, errors.Join(ErrInvalidUser, errors.New("username must be 3-50 characters"))
	}
	if len(req.Password) < 8 {
		return nil, errors.Join(ErrInvalidUser, errors.New("password must be at least 8 characters"))
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		AvatarURL:    req.AvatarURL,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies an email and password pair
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves all users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update modifies an existing user
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	return s.repo.Update(ctx, id, req)
}

// Delete removes a user
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
