package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authService "github.com/allisson/permguard/internal/auth/service"
	authUseCase "github.com/allisson/permguard/internal/auth/usecase"
	apperrors "github.com/allisson/permguard/internal/errors"
	"github.com/allisson/permguard/internal/httputil"
)

// AuthenticationMiddleware authenticates requests with a Bearer token.
//
// The token is hashed and resolved through TokenUseCase.Authenticate, which
// rebuilds the principal stored in the ticket. The principal then goes through
// the claims transformation, which adds the user's current permission claims
// unless the ticket already carries them. The result is stored in the request
// context and is available through GetPrincipal.
//
// Error handling:
//   - Missing, malformed or empty Authorization header: 401
//   - Expired, revoked or stale ticket: 401
//   - Store failure while resolving permissions: 500
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	transformation authService.ClaimsTransformation,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		tokenHash := tokenService.HashToken(plainToken)

		principal, err := tokenUseCase.Authenticate(c.Request.Context(), tokenHash)
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		principal, err = transformation.Transform(c.Request.Context(), principal)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		ctx := WithPrincipal(c.Request.Context(), principal)
		ctx = WithTokenHash(ctx, tokenHash)
		c.Request = c.Request.WithContext(ctx)

		if userID, ok := principal.UserID(); ok {
			logger.Debug("authentication successful", slog.String("user_id", userID.String()))
		}

		c.Next()
	}
}

// bearerToken extracts the token from a "Bearer <token>" header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// RequirePermission allows the request only when the principal holds the
// permission. Permission values are compared byte for byte.
//
// MUST be used after AuthenticationMiddleware.
func RequirePermission(permission string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok || !principal.IsAuthenticated() {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		if !principal.HasPermission(permission) {
			logger.Debug("authorization failed: missing permission",
				slog.String("permission", permission),
				slog.String("path", c.FullPath()))
			httputil.HandleErrorGin(c, authDomain.ErrPermissionDenied, logger)
			return
		}

		c.Next()
	}
}
