package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/permguard/internal/auth/http/dto"
	authUseCase "github.com/allisson/permguard/internal/auth/usecase"
	"github.com/allisson/permguard/internal/httputil"
	customValidation "github.com/allisson/permguard/internal/validation"
)

// UserAccessHandler handles HTTP requests for a user's roles, direct claims
// and effective permissions.
type UserAccessHandler struct {
	userAccessUseCase authUseCase.UserAccessUseCase
	logger            *slog.Logger
}

// NewUserAccessHandler creates a new user access handler with required dependencies.
func NewUserAccessHandler(
	userAccessUseCase authUseCase.UserAccessUseCase,
	logger *slog.Logger,
) *UserAccessHandler {
	return &UserAccessHandler{
		userAccessUseCase: userAccessUseCase,
		logger:            logger,
	}
}

// parseUserID reads the :id path parameter. It writes a 400 response and
// returns false when the parameter is not a UUID.
func (h *UserAccessHandler) parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid user id format: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return userID, true
}

// ListRolesHandler lists the names of the roles assigned to a user.
// GET /v1/users/:id/roles - Requires Permissions.Users.View.
func (h *UserAccessHandler) ListRolesHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	roles, err := h.userAccessUseCase.ListRoles(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapNamesToListResponse(roles))
}

// AssignRoleHandler assigns a role to a user.
// POST /v1/users/:id/roles - Requires Permissions.Users.Edit.
// Returns 204 No Content.
func (h *UserAccessHandler) AssignRoleHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.userAccessUseCase.AssignRole(c.Request.Context(), userID, req.Role); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveRoleHandler removes a role from a user.
// DELETE /v1/users/:id/roles/:role - Requires Permissions.Users.Edit.
// Returns 204 No Content.
func (h *UserAccessHandler) RemoveRoleHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	if err := h.userAccessUseCase.RemoveRole(c.Request.Context(), userID, c.Param("role")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClaimsHandler lists the claims attached directly to a user.
// GET /v1/users/:id/claims - Requires Permissions.Users.View.
func (h *UserAccessHandler) ListClaimsHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	claims, err := h.userAccessUseCase.ListClaims(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClaimsToListResponse(claims))
}

// AddClaimHandler attaches a claim to a user.
// POST /v1/users/:id/claims - Requires Permissions.Users.Edit.
// Returns 201 Created with the claim as stored.
func (h *UserAccessHandler) AddClaimHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	claim, err := h.userAccessUseCase.AddClaim(c.Request.Context(), userID, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapClaimToResponse(claim))
}

// RemoveClaimHandler detaches a claim from a user.
// DELETE /v1/users/:id/claims?type=...&value=... - Requires Permissions.Users.Edit.
// Returns 204 No Content.
func (h *UserAccessHandler) RemoveClaimHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.userAccessUseCase.RemoveClaim(c.Request.Context(), userID, req.ToDomain()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// EffectivePermissionsHandler lists the aggregated permissions of a user:
// direct permission claims plus those of every assigned role.
// GET /v1/users/:id/permissions - Requires Permissions.Users.View.
func (h *UserAccessHandler) EffectivePermissionsHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	claims, err := h.userAccessUseCase.EffectivePermissions(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionClaimsToListResponse(claims))
}
