// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/permguard/internal/errors"
)

// User represents a user in the system.
type User struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Password string //nolint:gosec // argon2id hash, never the plain password
	// SecurityStamp changes whenever security-sensitive state changes. Tokens
	// and cached permission sets issued under an older stamp stop being valid.
	SecurityStamp string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
