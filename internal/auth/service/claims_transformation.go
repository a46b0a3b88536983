package service

import (
	"context"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	apperrors "github.com/allisson/permguard/internal/errors"
)

// ClaimsTransformation augments a principal rebuilt from a ticket with the
// user's current permission claims.
type ClaimsTransformation interface {
	// Transform returns the principal to authorize with. The incoming
	// principal is never modified: when claims are added they go to a clone.
	Transform(ctx context.Context, principal *authDomain.Principal) (*authDomain.Principal, error)
}

type claimsTransformation struct {
	users    UserFinder
	resolver PermissionResolver
}

// NewClaimsTransformation creates a ClaimsTransformation.
func NewClaimsTransformation(users UserFinder, resolver PermissionResolver) ClaimsTransformation {
	return &claimsTransformation{
		users:    users,
		resolver: resolver,
	}
}

// Transform implements ClaimsTransformation.
//
// An unauthenticated principal is returned as is. Otherwise the principal is
// cloned; if the clone already carries a permission claim, or its user cannot
// be found, the clone is returned untouched. Any permission claim is taken to
// mean the ticket was issued with its permissions embedded.
func (t *claimsTransformation) Transform(
	ctx context.Context,
	principal *authDomain.Principal,
) (*authDomain.Principal, error) {
	if !principal.IsAuthenticated() {
		return principal, nil
	}

	clone := principal.Clone()
	identity := clone.Identity()

	if identity.HasClaimType(authDomain.PermissionClaimType) {
		return clone, nil
	}

	userID, ok := clone.UserID()
	if !ok {
		return clone, nil
	}

	user, err := t.users.FindUserByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return clone, nil
		}
		return nil, err
	}
	if user == nil {
		return clone, nil
	}

	permissions, err := t.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	MergeClaims(identity, permissions)

	return clone, nil
}
