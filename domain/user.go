package domain

import (
	"context"
	"time"
)

// User represents a user entity in the system.
// A user can register, login, submit items, comment and bookmark.
type User struct {
	ID           int64     // Unique identifier
	Username     string    // Login username (unique)
	PasswordHash string    // Bcrypt hashed password
	CreatedAt    time.Time // Account creation timestamp
	UpdatedAt    time.Time // Last profile update timestamp
}

// UserRepository defines the contract for user data persistence.
type UserRepository interface {
	// GetByID retrieves a user by their ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetByID(ctx context.Context, id int64) (User, error)

	// GetByIDs retrieves users by given IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]User, error)

	// GetByUsername retrieves a user by their username.
	// Used during login to verify credentials.
	GetByUsername(ctx context.Context, username string) (User, error)

	// Insert creates a new user account.
	// Backfills the ID in the provided User object upon success.
	Insert(ctx context.Context, u *User) error
}

// UserUsecase defines the business logic contract for user operations.
// Handles authentication, registration, and user management.
type UserUsecase interface {
	// Register creates a new user account and logs it in.
	// Returns ErrConflict if the username already exists.
	// Returns ErrBadParamInput if username or password break the rules.
	Register(ctx context.Context, username, password string) (User, string, error)

	// Login verifies user credentials and returns the user plus a JWT token.
	// Returns ErrUnauthorized if the credentials are wrong.
	Login(ctx context.Context, username, password string) (User, string, error)

	// GetByID resolves a user, for /me style lookups.
	GetByID(ctx context.Context, id int64) (User, error)
}
