package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authService "github.com/allisson/permguard/internal/auth/service"
	"github.com/allisson/permguard/internal/config"
	userDomain "github.com/allisson/permguard/internal/user/domain"
	appValidation "github.com/allisson/permguard/internal/validation"
)

// tokenUseCase implements TokenUseCase on top of persisted tickets.
type tokenUseCase struct {
	config          *config.Config
	userRepo        UserRepository
	tokenRepo       TokenRepository
	passwordService authService.PasswordService
	tokenService    authService.TokenService
	factory         authService.PrincipalFactory
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	userRepo UserRepository,
	tokenRepo TokenRepository,
	passwordService authService.PasswordService,
	tokenService authService.TokenService,
	factory authService.PrincipalFactory,
) TokenUseCase {
	return &tokenUseCase{
		config:          config,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
		factory:         factory,
	}
}

// Issue authenticates a user and stores a new ticket.
//
// The ticket carries the identity built by the principal factory. Permission
// claims are kept in the ticket only when AuthTicketIncludePermissions is set;
// otherwise they are resolved again on every request.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Email, validation.Required, appValidation.NotBlank),
		validation.Field(&input.Password, validation.Required),
	)
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}

	user, err := t.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !t.passwordService.Compare(input.Password, user.Password) {
		return nil, authDomain.ErrInvalidCredentials
	}

	identity, err := t.factory.CreateIdentity(ctx, user)
	if err != nil {
		return nil, err
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	claims := identity.Claims()
	permissions := authDomain.NewPrincipal(identity).Permissions()
	if !t.config.AuthTicketIncludePermissions {
		claims = withoutPermissions(claims)
	}

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		UserID:    user.ID,
		Claims:    claims,
		ExpiresAt: now.Add(t.config.AuthTokenExpiration),
		CreatedAt: now,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{
		PlainToken:  plainToken,
		ExpiresAt:   token.ExpiresAt,
		Permissions: permissions,
	}, nil
}

func withoutPermissions(claims []authDomain.Claim) []authDomain.Claim {
	kept := make([]authDomain.Claim, 0, len(claims))
	for _, c := range claims {
		if !c.IsPermission() {
			kept = append(kept, c)
		}
	}
	return kept
}

// Authenticate validates a ticket and returns the principal it carries.
//
// A ticket stops authenticating when it expires, when it is revoked, when its
// user no longer exists, or when the user's security stamp no longer matches
// the stamp captured at issue time. All of these return ErrInvalidToken.
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if token.IsExpired(time.Now().UTC()) || token.IsRevoked() {
		return nil, authDomain.ErrInvalidToken
	}

	user, err := t.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	identity := authDomain.NewIdentity(authDomain.BearerAuthenticationType, token.Claims...)
	principal := authDomain.NewPrincipal(identity)
	if principal.SecurityStamp() != user.SecurityStamp {
		return nil, authDomain.ErrInvalidToken
	}

	return principal, nil
}

// Revoke marks the ticket as revoked. Revoking twice is a no-op.
func (t *tokenUseCase) Revoke(ctx context.Context, tokenHash string) error {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return err
	}
	if token.IsRevoked() {
		return nil
	}

	now := time.Now().UTC()
	token.RevokedAt = &now
	return t.tokenRepo.Update(ctx, token)
}

// PurgeExpired implements TokenUseCase.
func (t *tokenUseCase) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return t.tokenRepo.DeleteExpired(ctx, before)
}
