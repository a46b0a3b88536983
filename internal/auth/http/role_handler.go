package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/permguard/internal/auth/http/dto"
	authUseCase "github.com/allisson/permguard/internal/auth/usecase"
	"github.com/allisson/permguard/internal/httputil"
	customValidation "github.com/allisson/permguard/internal/validation"
)

// RoleHandler handles HTTP requests for roles and the claims attached to them.
// Roles are addressed by name.
type RoleHandler struct {
	roleUseCase authUseCase.RoleUseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(roleUseCase authUseCase.RoleUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUseCase,
		logger:      logger,
	}
}

// CreateHandler creates a role.
// POST /v1/roles - Requires Permissions.Roles.Create.
// Returns 201 Created.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Create(c.Request.Context(), req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// GetHandler returns a role.
// GET /v1/roles/:name - Requires Permissions.Roles.View.
func (h *RoleHandler) GetHandler(c *gin.Context) {
	role, err := h.roleUseCase.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// ListHandler lists roles ordered by name.
// GET /v1/roles?offset=0&limit=50 - Requires Permissions.Roles.View.
func (h *RoleHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	roles, err := h.roleUseCase.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToListResponse(roles))
}

// DeleteHandler deletes a role together with its claims and assignments.
// DELETE /v1/roles/:name - Requires Permissions.Roles.Delete.
// Returns 204 No Content.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	if err := h.roleUseCase.Delete(c.Request.Context(), c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClaimsHandler lists the claims attached to a role.
// GET /v1/roles/:name/claims - Requires Permissions.Roles.View.
func (h *RoleHandler) ListClaimsHandler(c *gin.Context) {
	claims, err := h.roleUseCase.ListClaims(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClaimsToListResponse(claims))
}

// AddClaimHandler attaches a claim to a role.
// POST /v1/roles/:name/claims - Requires Permissions.Roles.Edit.
// Returns 201 Created with the claim as stored.
func (h *RoleHandler) AddClaimHandler(c *gin.Context) {
	var req dto.ClaimRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	claim, err := h.roleUseCase.AddClaim(c.Request.Context(), c.Param("name"), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapClaimToResponse(claim))
}

// RemoveClaimHandler detaches a claim from a role.
// DELETE /v1/roles/:name/claims?type=...&value=... - Requires Permissions.Roles.Edit.
// Returns 204 No Content.
func (h *RoleHandler) RemoveClaimHandler(c *gin.Context) {
	var req dto.ClaimRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.roleUseCase.RemoveClaim(c.Request.Context(), c.Param("name"), req.ToDomain()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
