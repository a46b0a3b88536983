package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/auth/http/dto"
	apperrors "github.com/allisson/permguard/internal/errors"
	"github.com/allisson/permguard/internal/httputil"
)

// PermissionHandler serves the permission registry and the caller's own view
// of its identity.
type PermissionHandler struct {
	logger *slog.Logger
}

// NewPermissionHandler creates a new permission handler.
func NewPermissionHandler(logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{logger: logger}
}

// ListHandler lists every registered permission.
// GET /v1/permissions - Requires Permissions.Permissions.View.
func (h *PermissionHandler) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapNamesToListResponse(authDomain.AllPermissions()))
}

// MeHandler describes the authenticated caller, including the permissions
// added by the claims transformation.
// GET /v1/me - Requires authentication.
func (h *PermissionHandler) MeHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPrincipalToMeResponse(principal))
}
