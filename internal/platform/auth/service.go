package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

var validRoles = map[string]bool{
	"admin": true, "receptionist": true, "doctor": true,
}

// Service handles login and account management.
type Service struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewService(users UserRepository, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		// Same answer for unknown user and wrong password.
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := IssueToken(s.secret, u, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// CreateUser creates an account with a freshly hashed password.
func (s *Service) CreateUser(ctx context.Context, username, password, role string, doctorID *int64) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		DoctorID:     doctorID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account unless it already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*User, error) {
	if u, err := s.users.GetByUsername(ctx, username); err == nil {
		return u, nil
	}
	return s.CreateUser(ctx, username, password, "admin", nil)
}
