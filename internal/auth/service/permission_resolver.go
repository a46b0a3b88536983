package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/cache"
	apperrors "github.com/allisson/permguard/internal/errors"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// PermissionCacheKey returns the cache key of a user's permission set. The
// security stamp is part of the key, so rotating it makes older entries
// unreachable without evicting them.
func PermissionCacheKey(userID uuid.UUID, securityStamp string) string {
	return "permissions:" + userID.String() + ":" + securityStamp
}

// permissionResolver implements PermissionResolver over a user store and a
// role store. Optional store capabilities are checked once at construction.
type permissionResolver struct {
	userClaims UserClaimReader
	userRoles  UserRoleReader
	roles      RoleFinder
	roleClaims RoleClaimReader
	cache      cache.Cache[[]authDomain.Claim]
	logger     *slog.Logger
}

// NewPermissionResolver creates a PermissionResolver.
//
// userStore may implement UserClaimReader and UserRoleReader; roleStore may
// implement RoleClaimReader. Results are cached per (user id, security stamp).
func NewPermissionResolver(
	userStore any,
	roleStore RoleFinder,
	permissionCache cache.Cache[[]authDomain.Claim],
	logger *slog.Logger,
) PermissionResolver {
	r := &permissionResolver{
		roles:  roleStore,
		cache:  permissionCache,
		logger: logger,
	}
	r.userClaims, _ = userStore.(UserClaimReader)
	r.userRoles, _ = userStore.(UserRoleReader)
	r.roleClaims, _ = roleStore.(RoleClaimReader)
	return r
}

// Resolve returns the union of the user's direct permission claims and the
// permission claims of every role the user holds, without duplicates.
func (r *permissionResolver) Resolve(ctx context.Context, user *userDomain.User) ([]authDomain.Claim, error) {
	key := PermissionCacheKey(user.ID, user.SecurityStamp)

	return r.cache.GetOrCreate(ctx, key, func(ctx context.Context) ([]authDomain.Claim, error) {
		return r.aggregate(ctx, user.ID)
	})
}

func (r *permissionResolver) aggregate(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	set := &authDomain.ClaimSet{}

	if r.userClaims != nil {
		claims, err := r.userClaims.GetUserClaims(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, c := range authDomain.FilterPermissions(claims) {
			set.Add(c)
		}
	}

	if r.userRoles != nil {
		roleNames, err := r.userRoles.GetUserRoles(ctx, userID)
		if err != nil {
			return nil, err
		}

		for _, name := range roleNames {
			role, err := r.roles.FindRoleByName(ctx, name)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNotFound) {
					r.logger.Debug("skipping unknown role",
						slog.String("user_id", userID.String()),
						slog.String("role", name),
					)
					continue
				}
				return nil, err
			}
			if role == nil || r.roleClaims == nil {
				continue
			}

			claims, err := r.roleClaims.GetRoleClaims(ctx, role.ID)
			if err != nil {
				return nil, err
			}
			for _, c := range authDomain.FilterPermissions(claims) {
				set.Add(c)
			}
		}
	}

	r.logger.Debug("permissions resolved",
		slog.String("user_id", userID.String()),
		slog.Int("count", set.Len()),
	)

	return set.Slice(), nil
}

// MergeClaims adds every claim to identity unless an equal claim is already
// present. It returns the number of claims added.
func MergeClaims(identity *authDomain.Identity, claims []authDomain.Claim) int {
	added := 0
	for _, c := range claims {
		if identity.HasClaim(c.Type, c.Value) {
			continue
		}
		identity.AddClaim(c)
		added++
	}
	return added
}
