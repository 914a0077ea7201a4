package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"streamscout/internal/database"
	"streamscout/models"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrNameRequired       = errors.New("display name is required")
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// dummyHash is compared against when the email is unknown, so login timing
// does not reveal whether an account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service manages account registration, credential checks and profile reads.
type Service struct {
	repo *database.UserRepository
}

// NewService creates a user service on the given repository.
func NewService(repo *database.UserRepository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account. Email is normalized to trimmed lowercase;
// the password is stored as a bcrypt hash. New accounts start with the
// default token grant applied by the schema.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if displayName == "" {
		return nil, ErrNameRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hash), displayName)
	if errors.Is(err, database.ErrDuplicateEmail) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the email and password, returning the account when
// valid. Unknown emails and wrong passwords are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the account with the given ID.
func (s *Service) Profile(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RememberSearch records the most recent search term for the account.
// Best-effort: failures are returned but callers typically just log them.
func (s *Service) RememberSearch(ctx context.Context, id int64, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	return s.repo.SetLastSearch(ctx, id, term)
}
