// Package usecase defines business logic for roles, claim assignment and
// authentication tokens.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	outboxDomain "github.com/allisson/permguard/internal/outbox/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// RoleRepository defines persistence operations for roles.
// Implementations must support transaction-aware operations via context propagation.
type RoleRepository interface {
	Create(ctx context.Context, role *authDomain.Role) error

	// GetByID retrieves a role by ID. Returns ErrRoleNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Role, error)

	// GetByName retrieves a role by exact name. Returns ErrRoleNotFound if not found.
	GetByName(ctx context.Context, name string) (*authDomain.Role, error)

	List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error)

	// Delete removes the role together with its claims and assignments.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoleClaimRepository defines persistence operations for claims attached to roles.
type RoleClaimRepository interface {
	Add(ctx context.Context, roleID uuid.UUID, claim authDomain.Claim) error
	Remove(ctx context.Context, roleID uuid.UUID, claim authDomain.Claim) error
	ListByRoleID(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error)
}

// UserClaimRepository defines persistence operations for claims attached directly to users.
type UserClaimRepository interface {
	Add(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error
	Remove(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error)
}

// UserRoleRepository defines persistence operations for role assignments.
type UserRoleRepository interface {
	Assign(ctx context.Context, userID, roleID uuid.UUID) error
	Remove(ctx context.Context, userID, roleID uuid.UUID) error
	ListRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// TokenRepository defines persistence operations for authentication tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error
	Update(ctx context.Context, token *authDomain.Token) error

	// GetByTokenHash retrieves a token by hash. Returns ErrTokenNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)

	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// UserRepository is the read side of the user repository.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// OutboxEventRepository records security events in the caller's transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// RoleUseCase manages roles and the claims attached to them.
//
// Claim changes are not pushed to cached permission sets: holders of the role
// see the change once their cached set expires or their security stamp rotates.
type RoleUseCase interface {
	Create(ctx context.Context, name string) (*authDomain.Role, error)
	Get(ctx context.Context, name string) (*authDomain.Role, error)
	List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error)
	Delete(ctx context.Context, name string) error

	// AddClaim attaches a claim to the role and returns the claim as stored.
	// Permission claims get the canonical type and must name a registered
	// permission. Returns ErrClaimAlreadyExists if an equal claim is attached.
	AddClaim(ctx context.Context, name string, claim authDomain.Claim) (authDomain.Claim, error)

	// RemoveClaim detaches the claim equal to claim. Returns ErrClaimNotFound if none is attached.
	RemoveClaim(ctx context.Context, name string, claim authDomain.Claim) error

	ListClaims(ctx context.Context, name string) ([]authDomain.Claim, error)
}

// UserAccessUseCase manages a user's roles and direct claims.
type UserAccessUseCase interface {
	AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error
	RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error
	ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error)

	AddClaim(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) (authDomain.Claim, error)
	RemoveClaim(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error
	ListClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error)

	// EffectivePermissions returns the aggregated permission claims of the user,
	// served from the permission cache when possible.
	EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error)
}

// TokenUseCase issues, authenticates and revokes bearer tokens.
type TokenUseCase interface {
	// Issue verifies the credentials and persists a new ticket. Unknown email
	// and wrong password both return ErrInvalidCredentials.
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Authenticate rebuilds the principal stored in the ticket. Expired,
	// revoked and stale tickets return ErrInvalidToken.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error)

	Revoke(ctx context.Context, tokenHash string) error

	// PurgeExpired deletes tickets that expired before the given time.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
