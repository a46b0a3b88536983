package service

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// UserRepository is the subset of the user repository the store reads.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// UserClaimRepository reads claims attached directly to users.
type UserClaimRepository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error)
}

// UserRoleRepository reads role assignments.
type UserRoleRepository interface {
	ListRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// RoleRepository reads roles.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*authDomain.Role, error)
}

// RoleClaimRepository reads claims attached to roles.
type RoleClaimRepository interface {
	ListByRoleID(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error)
}

// Store exposes the user and role repositories through the aggregator's
// capability interfaces. It supports every optional capability.
type Store struct {
	users      UserRepository
	userClaims UserClaimRepository
	userRoles  UserRoleRepository
	roles      RoleRepository
	roleClaims RoleClaimRepository
}

var (
	_ UserFinder      = (*Store)(nil)
	_ UserClaimReader = (*Store)(nil)
	_ UserRoleReader  = (*Store)(nil)
	_ RoleFinder      = (*Store)(nil)
	_ RoleClaimReader = (*Store)(nil)
)

// NewStore creates a Store.
func NewStore(
	users UserRepository,
	userClaims UserClaimRepository,
	userRoles UserRoleRepository,
	roles RoleRepository,
	roleClaims RoleClaimRepository,
) *Store {
	return &Store{
		users:      users,
		userClaims: userClaims,
		userRoles:  userRoles,
		roles:      roles,
		roleClaims: roleClaims,
	}
}

// FindUserByID implements UserFinder.
func (s *Store) FindUserByID(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetUserClaims implements UserClaimReader.
func (s *Store) GetUserClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	return s.userClaims.ListByUserID(ctx, userID)
}

// GetUserRoles implements UserRoleReader.
func (s *Store) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.userRoles.ListRoleNamesByUserID(ctx, userID)
}

// FindRoleByName implements RoleFinder.
func (s *Store) FindRoleByName(ctx context.Context, name string) (*authDomain.Role, error) {
	return s.roles.GetByName(ctx, name)
}

// GetRoleClaims implements RoleClaimReader.
func (s *Store) GetRoleClaims(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error) {
	return s.roleClaims.ListByRoleID(ctx, roleID)
}
