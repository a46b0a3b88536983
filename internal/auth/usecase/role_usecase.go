package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/database"
	outboxDomain "github.com/allisson/permguard/internal/outbox/domain"
	appValidation "github.com/allisson/permguard/internal/validation"
)

// rolePayload is the outbox payload of role lifecycle events.
type rolePayload struct {
	RoleID string `json:"role_id"`
	Name   string `json:"name"`
}

type roleUseCase struct {
	txManager     database.TxManager
	roleRepo      RoleRepository
	roleClaimRepo RoleClaimRepository
	outboxRepo    OutboxEventRepository
}

// NewRoleUseCase creates a new RoleUseCase with the provided dependencies.
func NewRoleUseCase(
	txManager database.TxManager,
	roleRepo RoleRepository,
	roleClaimRepo RoleClaimRepository,
	outboxRepo OutboxEventRepository,
) RoleUseCase {
	return &roleUseCase{
		txManager:     txManager,
		roleRepo:      roleRepo,
		roleClaimRepo: roleClaimRepo,
		outboxRepo:    outboxRepo,
	}
}

func validateRoleName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("name is required"),
		appValidation.NotBlank,
		appValidation.NoWhitespace,
		appValidation.RoleName,
		validation.Length(1, 100).Error("name must be between 1 and 100 characters"),
	)
	return appValidation.WrapValidationError(err)
}

// Create stores a new role. Returns ErrRoleAlreadyExists if the name is taken.
func (r *roleUseCase) Create(ctx context.Context, name string) (*authDomain.Role, error) {
	if err := validateRoleName(name); err != nil {
		return nil, err
	}

	role := &authDomain.Role{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.roleRepo.Create(ctx, role); err != nil {
			return err
		}
		return recordEvent(ctx, r.outboxRepo, outboxDomain.EventRoleCreated,
			rolePayload{RoleID: role.ID.String(), Name: role.Name})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Get retrieves a role by exact name.
func (r *roleUseCase) Get(ctx context.Context, name string) (*authDomain.Role, error) {
	return r.roleRepo.GetByName(ctx, strings.TrimSpace(name))
}

// List returns roles ordered by name.
func (r *roleUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error) {
	return r.roleRepo.List(ctx, offset, limit)
}

// Delete removes the role, its claims and its assignments.
func (r *roleUseCase) Delete(ctx context.Context, name string) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		role, err := r.roleRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if err := r.roleRepo.Delete(ctx, role.ID); err != nil {
			return err
		}
		return recordEvent(ctx, r.outboxRepo, outboxDomain.EventRoleDeleted,
			rolePayload{RoleID: role.ID.String(), Name: role.Name})
	})
}

// AddClaim implements RoleUseCase.
func (r *roleUseCase) AddClaim(
	ctx context.Context,
	name string,
	claim authDomain.Claim,
) (authDomain.Claim, error) {
	claim, err := normalizeClaim(claim)
	if err != nil {
		return authDomain.Claim{}, err
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		role, err := r.roleRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}

		existing, err := r.roleClaimRepo.ListByRoleID(ctx, role.ID)
		if err != nil {
			return err
		}
		if authDomain.NewClaimSet(existing...).Contains(claim) {
			return authDomain.ErrClaimAlreadyExists
		}

		if err := r.roleClaimRepo.Add(ctx, role.ID, claim); err != nil {
			return err
		}
		return recordEvent(ctx, r.outboxRepo, outboxDomain.EventRoleClaimAdded,
			claimPayload{Owner: role.Name, Type: claim.Type, Value: claim.Value})
	})
	if err != nil {
		return authDomain.Claim{}, err
	}
	return claim, nil
}

// RemoveClaim implements RoleUseCase.
func (r *roleUseCase) RemoveClaim(ctx context.Context, name string, claim authDomain.Claim) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		role, err := r.roleRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}

		existing, err := r.roleClaimRepo.ListByRoleID(ctx, role.ID)
		if err != nil {
			return err
		}
		stored, ok := findClaim(existing, claim)
		if !ok {
			return authDomain.ErrClaimNotFound
		}

		if err := r.roleClaimRepo.Remove(ctx, role.ID, stored); err != nil {
			return err
		}
		return recordEvent(ctx, r.outboxRepo, outboxDomain.EventRoleClaimRemoved,
			claimPayload{Owner: role.Name, Type: stored.Type, Value: stored.Value})
	})
}

// ListClaims returns the claims attached to the role.
func (r *roleUseCase) ListClaims(ctx context.Context, name string) ([]authDomain.Claim, error) {
	role, err := r.roleRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.roleClaimRepo.ListByRoleID(ctx, role.ID)
}
