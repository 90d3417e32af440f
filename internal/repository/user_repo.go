package repository

import (
	"context"
	"errors"
	"fmt"

	"billing_api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data
type UserRepository interface {
	// Create stores user and assigns its ID. Returns ErrDuplicateEmail when
	// the email is already taken.
	Create(ctx context.Context, user *model.User) error
	// FindByEmail returns nil, nil when no user has that email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByID returns nil, nil when the user does not exist and
	// ErrInvalidID when id is malformed.
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a postgres-backed UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	id := uuid.New()
	sql := `INSERT INTO users (id, name, email, password_hash, created_at)
            VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, sql, id.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id.String()
	return nil
}

// FindByEmail retrieves a user by their email address
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error for this method's contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	sql := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, uid.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}
