// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/permguard/internal/database"
	apperrors "github.com/allisson/permguard/internal/errors"
	outboxDomain "github.com/allisson/permguard/internal/outbox/domain"
	"github.com/allisson/permguard/internal/user/domain"
	appValidation "github.com/allisson/permguard/internal/validation"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ChangePassword replaces the user's password and rotates the security stamp.
	ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error

	// RotateSecurityStamp gives the user a new security stamp. Every token
	// issued before the rotation stops authenticating and cached permission
	// sets keyed by the old stamp are no longer reachable.
	RotateSecurityStamp(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// OutboxEventRepository stores security events in the caller's transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// PasswordHasher hashes plain passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// SecurityStampGenerator creates new security stamps.
type SecurityStampGenerator interface {
	GenerateSecurityStamp() (string, error)
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager  database.TxManager
	userRepo   UserRepository
	outboxRepo OutboxEventRepository
	hasher     PasswordHasher
	stamps     SecurityStampGenerator
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	outboxRepo OutboxEventRepository,
	hasher PasswordHasher,
	stamps SecurityStampGenerator,
) UseCase {
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		hasher:     hasher,
		stamps:     stamps,
	}
}

func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.DefaultPasswordStrength,
		),
	)
	return appValidation.WrapValidationError(err)
}

func validatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		appValidation.DefaultPasswordStrength,
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser creates a user with a hashed password and a fresh security
// stamp, and records a user.registered event.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	stamp, err := uc.stamps.GenerateSecurityStamp()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          strings.TrimSpace(input.Name),
		Email:         normalizeEmail(input.Email),
		Password:      hashedPassword,
		SecurityStamp: stamp,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return uc.recordEvent(ctx, outboxDomain.EventUserRegistered, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// ChangePassword implements UseCase.
func (uc *UserUseCase) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := uc.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		user.Password = hashedPassword
		if err := uc.rotateStamp(ctx, user); err != nil {
			return err
		}
		return uc.recordEvent(ctx, outboxDomain.EventUserPasswordChanged, user)
	})
}

// RotateSecurityStamp implements UseCase.
func (uc *UserUseCase) RotateSecurityStamp(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user *domain.User

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = uc.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := uc.rotateStamp(ctx, user); err != nil {
			return err
		}
		return uc.recordEvent(ctx, outboxDomain.EventSecurityStampRotated, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// rotateStamp assigns a new security stamp and persists the user.
func (uc *UserUseCase) rotateStamp(ctx context.Context, user *domain.User) error {
	stamp, err := uc.stamps.GenerateSecurityStamp()
	if err != nil {
		return err
	}

	user.SecurityStamp = stamp
	user.UpdatedAt = time.Now().UTC()
	return uc.userRepo.Update(ctx, user)
}

func (uc *UserUseCase) recordEvent(ctx context.Context, eventType string, user *domain.User) error {
	event, err := outboxDomain.NewOutboxEvent(eventType, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event payload")
	}

	return uc.outboxRepo.Create(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
