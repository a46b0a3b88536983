package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authHTTP "github.com/allisson/permguard/internal/auth/http"
	authRepository "github.com/allisson/permguard/internal/auth/repository"
	authService "github.com/allisson/permguard/internal/auth/service"
	authUseCase "github.com/allisson/permguard/internal/auth/usecase"
	"github.com/allisson/permguard/internal/cache"
	"github.com/allisson/permguard/internal/database"
)

// permissionCacheName labels the permission cache in lookup metrics.
const permissionCacheName = "permissions"

// PasswordService returns the Argon2id password service.
func (c *Container) PasswordService() (authService.PasswordService, error) {
	var err error
	c.passwordServiceInit.Do(func() {
		c.passwordService, err = authService.NewPasswordService()
		if err != nil {
			c.initErrors["passwordService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["passwordService"]; exists {
		return nil, storedErr
	}
	return c.passwordService, nil
}

// TokenService returns the token service for bearer tokens and security stamps.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// RoleRepository returns the role repository based on database driver.
func (c *Container) RoleRepository() (authUseCase.RoleRepository, error) {
	var err error
	c.roleRepoInit.Do(func() {
		c.roleRepo, err = c.initRoleRepository()
		if err != nil {
			c.initErrors["roleRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleRepo"]; exists {
		return nil, storedErr
	}
	return c.roleRepo, nil
}

// RoleClaimRepository returns the role claim repository based on database driver.
func (c *Container) RoleClaimRepository() (authUseCase.RoleClaimRepository, error) {
	var err error
	c.roleClaimRepoInit.Do(func() {
		c.roleClaimRepo, err = c.initRoleClaimRepository()
		if err != nil {
			c.initErrors["roleClaimRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleClaimRepo"]; exists {
		return nil, storedErr
	}
	return c.roleClaimRepo, nil
}

// UserClaimRepository returns the user claim repository based on database driver.
func (c *Container) UserClaimRepository() (authUseCase.UserClaimRepository, error) {
	var err error
	c.userClaimRepoInit.Do(func() {
		c.userClaimRepo, err = c.initUserClaimRepository()
		if err != nil {
			c.initErrors["userClaimRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userClaimRepo"]; exists {
		return nil, storedErr
	}
	return c.userClaimRepo, nil
}

// UserRoleRepository returns the role assignment repository based on database driver.
func (c *Container) UserRoleRepository() (authUseCase.UserRoleRepository, error) {
	var err error
	c.userRoleRepoInit.Do(func() {
		c.userRoleRepo, err = c.initUserRoleRepository()
		if err != nil {
			c.initErrors["userRoleRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRoleRepo"]; exists {
		return nil, storedErr
	}
	return c.userRoleRepo, nil
}

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// Store returns the store the permission resolver reads users and roles from.
func (c *Container) Store() (*authService.Store, error) {
	var err error
	c.storeInit.Do(func() {
		c.store, err = c.initStore()
		if err != nil {
			c.initErrors["store"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.store, nil
}

// PermissionCache returns the cache of aggregated permission sets.
func (c *Container) PermissionCache() (cache.Cache[[]authDomain.Claim], error) {
	var err error
	c.permissionCacheInit.Do(func() {
		c.permissionCache, err = c.initPermissionCache()
		if err != nil {
			c.initErrors["permissionCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionCache"]; exists {
		return nil, storedErr
	}
	return c.permissionCache, nil
}

// PermissionResolver returns the permission claims aggregator.
func (c *Container) PermissionResolver() (authService.PermissionResolver, error) {
	var err error
	c.resolverInit.Do(func() {
		c.resolver, err = c.initPermissionResolver()
		if err != nil {
			c.initErrors["resolver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["resolver"]; exists {
		return nil, storedErr
	}
	return c.resolver, nil
}

// PrincipalFactory returns the identity-construction hook used when issuing tokens.
func (c *Container) PrincipalFactory() (authService.PrincipalFactory, error) {
	var err error
	c.factoryInit.Do(func() {
		var resolver authService.PermissionResolver
		resolver, err = c.PermissionResolver()
		if err != nil {
			err = fmt.Errorf("failed to get permission resolver for principal factory: %w", err)
			c.initErrors["principalFactory"] = err
			return
		}
		c.principalFactory = authService.NewPrincipalFactory(authDomain.BearerAuthenticationType, resolver)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["principalFactory"]; exists {
		return nil, storedErr
	}
	return c.principalFactory, nil
}

// ClaimsTransformation returns the principal-transformation hook run on every authenticated request.
func (c *Container) ClaimsTransformation() (authService.ClaimsTransformation, error) {
	var err error
	c.transformationInit.Do(func() {
		c.transformation, err = c.initClaimsTransformation()
		if err != nil {
			c.initErrors["transformation"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transformation"]; exists {
		return nil, storedErr
	}
	return c.transformation, nil
}

// RoleUseCase returns the role use case.
func (c *Container) RoleUseCase() (authUseCase.RoleUseCase, error) {
	var err error
	c.roleUseCaseInit.Do(func() {
		c.roleUseCase, err = c.initRoleUseCase()
		if err != nil {
			c.initErrors["roleUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleUseCase, nil
}

// UserAccessUseCase returns the use case managing user roles and claims.
func (c *Container) UserAccessUseCase() (authUseCase.UserAccessUseCase, error) {
	var err error
	c.userAccessInit.Do(func() {
		c.userAccessUseCase, err = c.initUserAccessUseCase()
		if err != nil {
			c.initErrors["userAccessUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userAccessUseCase"]; exists {
		return nil, storedErr
	}
	return c.userAccessUseCase, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TokenHandler returns the HTTP handler for token operations.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		var useCase authUseCase.TokenUseCase
		useCase, err = c.TokenUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get token use case for token handler: %w", err)
			c.initErrors["tokenHandler"] = err
			return
		}
		c.tokenHandler = authHTTP.NewTokenHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// RoleHandler returns the HTTP handler for role management.
func (c *Container) RoleHandler() (*authHTTP.RoleHandler, error) {
	var err error
	c.roleHandlerInit.Do(func() {
		var useCase authUseCase.RoleUseCase
		useCase, err = c.RoleUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get role use case for role handler: %w", err)
			c.initErrors["roleHandler"] = err
			return
		}
		c.roleHandler = authHTTP.NewRoleHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleHandler"]; exists {
		return nil, storedErr
	}
	return c.roleHandler, nil
}

// UserAccessHandler returns the HTTP handler for user roles and claims.
func (c *Container) UserAccessHandler() (*authHTTP.UserAccessHandler, error) {
	var err error
	c.userAccessHdlInit.Do(func() {
		var useCase authUseCase.UserAccessUseCase
		useCase, err = c.UserAccessUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get user access use case for user access handler: %w", err)
			c.initErrors["userAccessHandler"] = err
			return
		}
		c.userAccessHandler = authHTTP.NewUserAccessHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userAccessHandler"]; exists {
		return nil, storedErr
	}
	return c.userAccessHandler, nil
}

// PermissionHandler returns the HTTP handler for the permission registry and /v1/me.
func (c *Container) PermissionHandler() *authHTTP.PermissionHandler {
	c.permissionHdlInit.Do(func() {
		c.permissionHandler = authHTTP.NewPermissionHandler(c.Logger())
	})
	return c.permissionHandler
}

// AuthenticationMiddleware returns the bearer token middleware shared by authenticated routes.
func (c *Container) AuthenticationMiddleware() (gin.HandlerFunc, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for authentication middleware: %w", err)
	}

	transformation, err := c.ClaimsTransformation()
	if err != nil {
		return nil, fmt.Errorf("failed to get claims transformation for authentication middleware: %w", err)
	}

	return authHTTP.AuthenticationMiddleware(tokenUseCase, c.TokenService(), transformation, c.Logger()), nil
}

func (c *Container) initRoleRepository() (authUseCase.RoleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLRoleRepository(db), nil
	case database.DriverMySQL:
		return authRepository.NewMySQLRoleRepository(db), nil
	default:
		return nil, database.UnsupportedDriver(c.config.DBDriver)
	}
}

func (c *Container) initRoleClaimRepository() (authUseCase.RoleClaimRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role claim repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLRoleClaimRepository(db), nil
	case database.DriverMySQL:
		return authRepository.NewMySQLRoleClaimRepository(db), nil
	default:
		return nil, database.UnsupportedDriver(c.config.DBDriver)
	}
}

func (c *Container) initUserClaimRepository() (authUseCase.UserClaimRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user claim repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLUserClaimRepository(db), nil
	case database.DriverMySQL:
		return authRepository.NewMySQLUserClaimRepository(db), nil
	default:
		return nil, database.UnsupportedDriver(c.config.DBDriver)
	}
}

func (c *Container) initUserRoleRepository() (authUseCase.UserRoleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user role repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLUserRoleRepository(db), nil
	case database.DriverMySQL:
		return authRepository.NewMySQLUserRoleRepository(db), nil
	default:
		return nil, database.UnsupportedDriver(c.config.DBDriver)
	}
}

func (c *Container) initTokenRepository() (authUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLTokenRepository(db), nil
	case database.DriverMySQL:
		return authRepository.NewMySQLTokenRepository(db), nil
	default:
		return nil, database.UnsupportedDriver(c.config.DBDriver)
	}
}

func (c *Container) initStore() (*authService.Store, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for store: %w", err)
	}
	userClaimRepo, err := c.UserClaimRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user claim repository for store: %w", err)
	}
	userRoleRepo, err := c.UserRoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user role repository for store: %w", err)
	}
	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for store: %w", err)
	}
	roleClaimRepo, err := c.RoleClaimRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role claim repository for store: %w", err)
	}

	return authService.NewStore(userRepo, userClaimRepo, userRoleRepo, roleRepo, roleClaimRepo), nil
}

func (c *Container) initPermissionCache() (cache.Cache[[]authDomain.Claim], error) {
	cacheMetrics, err := c.CacheMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache metrics for permission cache: %w", err)
	}

	permissionCache, err := cache.NewExpiringCache(
		c.config.PermissionCacheSize,
		c.config.PermissionCacheTTL,
		cache.WithMetrics[[]authDomain.Claim](permissionCacheName, cacheMetrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create permission cache: %w", err)
	}
	return permissionCache, nil
}

// initPermissionResolver creates the aggregator over the store. The store
// plays both the user store and the role store.
func (c *Container) initPermissionResolver() (authService.PermissionResolver, error) {
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for permission resolver: %w", err)
	}

	permissionCache, err := c.PermissionCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission cache for permission resolver: %w", err)
	}

	resolver := authService.NewPermissionResolver(store, store, permissionCache, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for permission resolver: %w", err)
		}
		return authService.NewPermissionResolverWithMetrics(resolver, businessMetrics), nil
	}

	return resolver, nil
}

func (c *Container) initClaimsTransformation() (authService.ClaimsTransformation, error) {
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for claims transformation: %w", err)
	}

	resolver, err := c.PermissionResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission resolver for claims transformation: %w", err)
	}

	return authService.NewClaimsTransformation(store, resolver), nil
}

func (c *Container) initRoleUseCase() (authUseCase.RoleUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for role use case: %w", err)
	}
	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for role use case: %w", err)
	}
	roleClaimRepo, err := c.RoleClaimRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role claim repository for role use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for role use case: %w", err)
	}

	baseUseCase := authUseCase.NewRoleUseCase(txManager, roleRepo, roleClaimRepo, outboxRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role use case: %w", err)
		}
		return authUseCase.NewRoleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initUserAccessUseCase() (authUseCase.UserAccessUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user access use case: %w", err)
	}
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user access use case: %w", err)
	}
	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for user access use case: %w", err)
	}
	userRoleRepo, err := c.UserRoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user role repository for user access use case: %w", err)
	}
	userClaimRepo, err := c.UserClaimRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user claim repository for user access use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for user access use case: %w", err)
	}
	resolver, err := c.PermissionResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission resolver for user access use case: %w", err)
	}

	baseUseCase := authUseCase.NewUserAccessUseCase(
		txManager,
		userRepo,
		roleRepo,
		userRoleRepo,
		userClaimRepo,
		outboxRepo,
		resolver,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user access use case: %w", err)
		}
		return authUseCase.NewUserAccessUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for token use case: %w", err)
	}
	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}
	passwordService, err := c.PasswordService()
	if err != nil {
		return nil, fmt.Errorf("failed to get password service for token use case: %w", err)
	}
	factory, err := c.PrincipalFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get principal factory for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		c.config,
		userRepo,
		tokenRepo,
		passwordService,
		c.TokenService(),
		factory,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
