// Package http provides the API server: router, middleware and health endpoints.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authHTTP "github.com/allisson/permguard/internal/auth/http"
	"github.com/allisson/permguard/internal/config"
	"github.com/allisson/permguard/internal/metrics"
	userHTTP "github.com/allisson/permguard/internal/user/http"
)

// Handlers groups the API handlers mounted by SetupRouter.
type Handlers struct {
	Token      *authHTTP.TokenHandler
	Role       *authHTTP.RoleHandler
	UserAccess *authHTTP.UserAccessHandler
	Permission *authHTTP.PermissionHandler
	User       *userHTTP.UserHandler
}

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. SetupRouter must be called before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port),
	}
}

// SetupRouter builds the gin engine with the full route table.
//
// authentication is the bearer token middleware (authHTTP.AuthenticationMiddleware)
// shared by every authenticated route. metricsProvider may be nil.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	authentication gin.HandlerFunc,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	tokenIssue := []gin.HandlerFunc{}
	if cfg.RateLimitTokenEnabled {
		tokenIssue = append(tokenIssue, authHTTP.TokenRateLimitMiddleware(
			cfg.RateLimitTokenRequestsPerSec,
			cfg.RateLimitTokenBurst,
			s.logger,
		))
	}
	tokenIssue = append(tokenIssue, handlers.Token.IssueTokenHandler)
	v1.POST("/token", tokenIssue...)

	authenticated := v1.Group("")
	authenticated.Use(authentication)
	if cfg.RateLimitEnabled {
		authenticated.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	require := func(permission string) gin.HandlerFunc {
		return authHTTP.RequirePermission(permission, s.logger)
	}

	authenticated.DELETE("/token", handlers.Token.RevokeTokenHandler)
	authenticated.GET("/me", handlers.Permission.MeHandler)
	authenticated.PUT("/me/password", handlers.User.ChangePasswordHandler)

	users := authenticated.Group("/users")
	{
		users.POST("", require(authDomain.PermissionUsersCreate), handlers.User.RegisterUserHandler)
		users.GET("/:id", require(authDomain.PermissionUsersView), handlers.User.GetUserHandler)
		users.POST("/:id/security-stamp",
			require(authDomain.PermissionUsersEdit), handlers.User.RotateSecurityStampHandler)
		users.GET("/:id/permissions",
			require(authDomain.PermissionUsersView), handlers.UserAccess.EffectivePermissionsHandler)

		users.GET("/:id/roles", require(authDomain.PermissionUsersView), handlers.UserAccess.ListRolesHandler)
		users.POST("/:id/roles", require(authDomain.PermissionUsersEdit), handlers.UserAccess.AssignRoleHandler)
		users.DELETE("/:id/roles/:role",
			require(authDomain.PermissionUsersEdit), handlers.UserAccess.RemoveRoleHandler)

		users.GET("/:id/claims", require(authDomain.PermissionUsersView), handlers.UserAccess.ListClaimsHandler)
		users.POST("/:id/claims", require(authDomain.PermissionUsersEdit), handlers.UserAccess.AddClaimHandler)
		users.DELETE("/:id/claims", require(authDomain.PermissionUsersEdit), handlers.UserAccess.RemoveClaimHandler)
	}

	roles := authenticated.Group("/roles")
	{
		roles.GET("", require(authDomain.PermissionRolesView), handlers.Role.ListHandler)
		roles.POST("", require(authDomain.PermissionRolesCreate), handlers.Role.CreateHandler)
		roles.GET("/:name", require(authDomain.PermissionRolesView), handlers.Role.GetHandler)
		roles.DELETE("/:name", require(authDomain.PermissionRolesDelete), handlers.Role.DeleteHandler)

		roles.GET("/:name/claims", require(authDomain.PermissionRolesView), handlers.Role.ListClaimsHandler)
		roles.POST("/:name/claims", require(authDomain.PermissionRolesEdit), handlers.Role.AddClaimHandler)
		roles.DELETE("/:name/claims", require(authDomain.PermissionRolesEdit), handlers.Role.RemoveClaimHandler)
	}

	authenticated.GET("/permissions", require(authDomain.PermissionPermissionsView), handlers.Permission.ListHandler)

	s.router = router
}

// newHTTPServer returns an unstarted server with the timeouts shared by the
// API and metrics listeners.
func newHTTPServer(host string, port int) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// listenAndServe blocks until srv stops. A graceful Shutdown is not an error.
func listenAndServe(srv *http.Server, logger *slog.Logger, name string) error {
	logger.Info("starting "+name, slog.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter before Start")
	}
	s.server.Handler = s.router

	return listenAndServe(s.server, s.logger, "http server")
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
