package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"billing_api/internal/model"
	"billing_api/internal/repository"
	"billing_api/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CredentialStore owns user identities and their password hashes.
// Plaintext passwords never leave the hashing and comparison calls.
type CredentialStore struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialStore creates a CredentialStore hashing at bcryptCost
func NewCredentialStore(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *CredentialStore {
	if bcryptCost == 0 {
		bcryptCost = utils.DefaultBcryptCost
	}
	return &CredentialStore{users: users, bcryptCost: bcryptCost, logger: logger}
}

// NormalizeEmail makes email lookups case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user, failing with ErrDuplicateUser when the email is taken
func (s *CredentialStore) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if len(password) > utils.MaxPasswordBytes {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", utils.MaxPasswordBytes),
		}}}
	}
	email = NormalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	hashedPassword, err := utils.HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Verify returns the user owning email when password matches its hash.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *CredentialStore) Verify(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		// Spend the same bcrypt time as a real comparison
		utils.CheckPasswordHash(password, s.dummy())
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Lookup resolves a user id, returning nil, nil when the user is gone
func (s *CredentialStore) Lookup(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *CredentialStore) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := utils.HashPasswordWithCost("not-a-real-password", s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
