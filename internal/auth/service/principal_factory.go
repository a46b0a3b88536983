package service

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// PrincipalFactory builds the identity persisted in an authentication ticket.
type PrincipalFactory interface {
	// CreateIdentity returns an identity carrying the user's base claims and
	// every resolved permission claim. A nil user or a user without an id
	// yields an identity with no claims and no resolution is attempted.
	CreateIdentity(ctx context.Context, user *userDomain.User) (*authDomain.Identity, error)
}

type principalFactory struct {
	authenticationType string
	resolver           PermissionResolver
}

// NewPrincipalFactory creates a PrincipalFactory whose identities use authenticationType.
func NewPrincipalFactory(authenticationType string, resolver PermissionResolver) PrincipalFactory {
	return &principalFactory{
		authenticationType: authenticationType,
		resolver:           resolver,
	}
}

// BaseClaims returns the identity claims every ticket carries.
func BaseClaims(user *userDomain.User) []authDomain.Claim {
	return []authDomain.Claim{
		{Type: authDomain.SubjectClaimType, Value: user.ID.String()},
		{Type: authDomain.NameClaimType, Value: user.Name},
		{Type: authDomain.EmailClaimType, Value: user.Email},
		{Type: authDomain.SecurityStampClaimType, Value: user.SecurityStamp},
	}
}

// CreateIdentity implements PrincipalFactory.
func (f *principalFactory) CreateIdentity(
	ctx context.Context,
	user *userDomain.User,
) (*authDomain.Identity, error) {
	if user == nil || user.ID == uuid.Nil {
		return authDomain.NewIdentity(f.authenticationType), nil
	}

	identity := authDomain.NewIdentity(f.authenticationType, BaseClaims(user)...)

	permissions, err := f.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	MergeClaims(identity, permissions)

	return identity, nil
}
