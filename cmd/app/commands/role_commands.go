package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authUseCase "github.com/allisson/permguard/internal/auth/usecase"
	userUsecase "github.com/allisson/permguard/internal/user/usecase"
)

// RunCreateRole creates a role with no claims.
func RunCreateRole(
	ctx context.Context,
	roleUseCase authUseCase.RoleUseCase,
	logger *slog.Logger,
	name string,
	format string,
	io IOTuple,
) error {
	role, err := roleUseCase.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if format == "json" {
		err = writeJSON(io.Writer, map[string]any{
			"id":         role.ID.String(),
			"name":       role.Name,
			"created_at": role.CreatedAt,
		})
	} else {
		_, err = fmt.Fprintf(io.Writer, "Role created successfully\nID: %s\nName: %s\n", role.ID, role.Name)
	}
	if err != nil {
		return err
	}

	logger.Info("role created successfully", slog.String("role_id", role.ID.String()))
	return nil
}

// RunGrantPermission attaches a permission claim to a role.
func RunGrantPermission(
	ctx context.Context,
	roleUseCase authUseCase.RoleUseCase,
	logger *slog.Logger,
	roleName string,
	permission string,
	io IOTuple,
) error {
	claim, err := roleUseCase.AddClaim(ctx, roleName, authDomain.NewPermissionClaim(permission))
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	if _, err := fmt.Fprintf(io.Writer, "Granted %s to role %s\n", claim.Value, roleName); err != nil {
		return err
	}

	logger.Info("permission granted", slog.String("role", roleName), slog.String("permission", claim.Value))
	return nil
}

// RunAssignRole gives a role to the user with the given email.
func RunAssignRole(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	userAccessUseCase authUseCase.UserAccessUseCase,
	logger *slog.Logger,
	email string,
	roleName string,
	io IOTuple,
) error {
	user, err := userUseCase.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := userAccessUseCase.AssignRole(ctx, user.ID, roleName); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	if _, err := fmt.Fprintf(io.Writer, "Assigned role %s to %s\n", roleName, user.Email); err != nil {
		return err
	}

	logger.Info("role assigned", slog.String("user_id", user.ID.String()), slog.String("role", roleName))
	return nil
}

// RunSeedAdmin makes sure the Administrator role exists, holds every
// registered permission and is assigned to the user with the given email.
// Running it again is harmless.
func RunSeedAdmin(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	roleUseCase authUseCase.RoleUseCase,
	userAccessUseCase authUseCase.UserAccessUseCase,
	logger *slog.Logger,
	email string,
	io IOTuple,
) error {
	user, err := userUseCase.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	roleName := authDomain.AdministratorRoleName

	if _, err := roleUseCase.Create(ctx, roleName); err != nil {
		if !errors.Is(err, authDomain.ErrRoleAlreadyExists) {
			return fmt.Errorf("failed to create administrator role: %w", err)
		}
		logger.Info("administrator role already exists")
	}

	granted := 0
	for _, permission := range authDomain.AllPermissions() {
		_, err := roleUseCase.AddClaim(ctx, roleName, authDomain.NewPermissionClaim(permission))
		switch {
		case err == nil:
			granted++
		case errors.Is(err, authDomain.ErrClaimAlreadyExists):
		default:
			return fmt.Errorf("failed to grant %s: %w", permission, err)
		}
	}

	err = userAccessUseCase.AssignRole(ctx, user.ID, roleName)
	if err != nil && !errors.Is(err, authDomain.ErrRoleAlreadyAssigned) {
		return fmt.Errorf("failed to assign administrator role: %w", err)
	}

	if _, err := fmt.Fprintf(
		io.Writer,
		"Administrator role seeded (%d new permission(s)) and assigned to %s\n",
		granted,
		user.Email,
	); err != nil {
		return err
	}

	logger.Info("administrator seeded",
		slog.String("user_id", user.ID.String()),
		slog.Int("granted", granted),
	)
	return nil
}
