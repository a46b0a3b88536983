// Package service implements the authorization services: password and token
// primitives, and the permission claims aggregator (resolver, identity
// factory and claims transformation) together with the store it reads from.
package service

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// Hash returns the PHC-encoded Argon2id hash of password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. Comparison is constant-time.
	Compare(password, hash string) bool
}

// TokenService generates opaque random values: bearer tokens and security stamps.
type TokenService interface {
	// GenerateToken creates a new random token and returns it with its SHA-256 hash.
	// Only the hash is ever persisted.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain text token using SHA-256.
	HashToken(plainToken string) string

	// GenerateSecurityStamp creates a new random security stamp.
	GenerateSecurityStamp() (string, error)
}

// The aggregator talks to the user and role stores through the small
// interfaces below. Only UserFinder and RoleFinder are required; the others
// are optional capabilities detected with a type assertion, and a store that
// lacks one simply contributes nothing from that source.
//
// Finders report absence with an error wrapping apperrors.ErrNotFound. Any
// other error is a store fault and is propagated unchanged.

// UserFinder looks a user up by id.
type UserFinder interface {
	FindUserByID(ctx context.Context, userID uuid.UUID) (*userDomain.User, error)
}

// UserClaimReader is implemented by user stores that support per-user claims.
type UserClaimReader interface {
	GetUserClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error)
}

// UserRoleReader is implemented by user stores that support role assignment.
type UserRoleReader interface {
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// RoleFinder resolves a role by name.
type RoleFinder interface {
	FindRoleByName(ctx context.Context, name string) (*authDomain.Role, error)
}

// RoleClaimReader is implemented by role stores that support per-role claims.
type RoleClaimReader interface {
	GetRoleClaims(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error)
}

// PermissionResolver computes the deduplicated permission claims of a user.
type PermissionResolver interface {
	// Resolve returns the user's permission claims. The returned slice may be
	// shared with other callers and must not be modified.
	Resolve(ctx context.Context, user *userDomain.User) ([]authDomain.Claim, error)
}
