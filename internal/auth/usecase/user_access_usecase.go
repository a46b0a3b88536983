package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authService "github.com/allisson/permguard/internal/auth/service"
	"github.com/allisson/permguard/internal/database"
	outboxDomain "github.com/allisson/permguard/internal/outbox/domain"
)

// roleAssignmentPayload is the outbox payload of role assignment events.
type roleAssignmentPayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type userAccessUseCase struct {
	txManager     database.TxManager
	userRepo      UserRepository
	roleRepo      RoleRepository
	userRoleRepo  UserRoleRepository
	userClaimRepo UserClaimRepository
	outboxRepo    OutboxEventRepository
	resolver      authService.PermissionResolver
}

// NewUserAccessUseCase creates a new UserAccessUseCase with the provided dependencies.
func NewUserAccessUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	roleRepo RoleRepository,
	userRoleRepo UserRoleRepository,
	userClaimRepo UserClaimRepository,
	outboxRepo OutboxEventRepository,
	resolver authService.PermissionResolver,
) UserAccessUseCase {
	return &userAccessUseCase{
		txManager:     txManager,
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		userRoleRepo:  userRoleRepo,
		userClaimRepo: userClaimRepo,
		outboxRepo:    outboxRepo,
		resolver:      resolver,
	}
}

// AssignRole gives an existing role to an existing user.
func (u *userAccessUseCase) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}
		role, err := u.roleRepo.GetByName(ctx, roleName)
		if err != nil {
			return err
		}
		if err := u.userRoleRepo.Assign(ctx, userID, role.ID); err != nil {
			return err
		}
		return recordEvent(ctx, u.outboxRepo, outboxDomain.EventUserRoleAssigned,
			roleAssignmentPayload{UserID: userID.String(), Role: role.Name})
	})
}

// RemoveRole takes a role away from a user.
func (u *userAccessUseCase) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.GetByName(ctx, roleName)
		if err != nil {
			return err
		}
		if err := u.userRoleRepo.Remove(ctx, userID, role.ID); err != nil {
			return err
		}
		return recordEvent(ctx, u.outboxRepo, outboxDomain.EventUserRoleRemoved,
			roleAssignmentPayload{UserID: userID.String(), Role: role.Name})
	})
}

// ListRoles returns the names of the user's roles.
func (u *userAccessUseCase) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return u.userRoleRepo.ListRoleNamesByUserID(ctx, userID)
}

// AddClaim attaches a claim directly to a user.
func (u *userAccessUseCase) AddClaim(
	ctx context.Context,
	userID uuid.UUID,
	claim authDomain.Claim,
) (authDomain.Claim, error) {
	claim, err := normalizeClaim(claim)
	if err != nil {
		return authDomain.Claim{}, err
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}

		existing, err := u.userClaimRepo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if authDomain.NewClaimSet(existing...).Contains(claim) {
			return authDomain.ErrClaimAlreadyExists
		}

		if err := u.userClaimRepo.Add(ctx, userID, claim); err != nil {
			return err
		}
		return recordEvent(ctx, u.outboxRepo, outboxDomain.EventUserClaimAdded,
			claimPayload{Owner: userID.String(), Type: claim.Type, Value: claim.Value})
	})
	if err != nil {
		return authDomain.Claim{}, err
	}
	return claim, nil
}

// RemoveClaim detaches the claim equal to claim from the user.
func (u *userAccessUseCase) RemoveClaim(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := u.userClaimRepo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		stored, ok := findClaim(existing, claim)
		if !ok {
			return authDomain.ErrClaimNotFound
		}

		if err := u.userClaimRepo.Remove(ctx, userID, stored); err != nil {
			return err
		}
		return recordEvent(ctx, u.outboxRepo, outboxDomain.EventUserClaimRemoved,
			claimPayload{Owner: userID.String(), Type: stored.Type, Value: stored.Value})
	})
}

// ListClaims returns the claims attached directly to the user.
func (u *userAccessUseCase) ListClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return u.userClaimRepo.ListByUserID(ctx, userID)
}

// EffectivePermissions implements UserAccessUseCase.
func (u *userAccessUseCase) EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.resolver.Resolve(ctx, user)
}
