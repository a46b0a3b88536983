package domain

import (
	"github.com/allisson/permguard/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrRoleNotFound indicates a role with the specified name or ID was not found.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrRoleAlreadyExists indicates a role with the same name already exists.
	ErrRoleAlreadyExists = errors.Wrap(errors.ErrConflict, "role already exists")

	// ErrRoleAlreadyAssigned indicates the user already holds the role.
	ErrRoleAlreadyAssigned = errors.Wrap(errors.ErrConflict, "role already assigned")

	// ErrRoleNotAssigned indicates the user does not hold the role.
	ErrRoleNotAssigned = errors.Wrap(errors.ErrNotFound, "role not assigned")

	// ErrClaimNotFound indicates the claim is not attached to the user or role.
	ErrClaimNotFound = errors.Wrap(errors.ErrNotFound, "claim not found")

	// ErrClaimAlreadyExists indicates an equal claim is already attached.
	ErrClaimAlreadyExists = errors.Wrap(errors.ErrConflict, "claim already exists")

	// ErrUnknownPermission indicates a permission claim names an unregistered permission.
	ErrUnknownPermission = errors.Wrap(errors.ErrInvalidInput, "unknown permission")

	// ErrInvalidCredentials indicates the email or password is wrong.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidToken indicates the token is expired, revoked or no longer matches its user.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrPermissionDenied indicates the principal lacks the required permission.
	ErrPermissionDenied = errors.Wrap(errors.ErrForbidden, "permission denied")
)
