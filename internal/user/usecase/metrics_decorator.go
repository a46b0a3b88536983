package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/permguard/internal/metrics"
	"github.com/allisson/permguard/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "users", operation, status)
	u.metrics.RecordDuration(ctx, "users", operation, time.Since(start), status)
}

// RegisterUser records metrics for user registration.
func (u *userUseCaseWithMetrics) RegisterUser(
	ctx context.Context,
	input RegisterUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.RegisterUser(ctx, input)
	u.record(ctx, "user_register", start, err)
	return user, err
}

// GetUserByEmail records metrics for user lookup by email.
func (u *userUseCaseWithMetrics) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByEmail(ctx, email)
	u.record(ctx, "user_get_by_email", start, err)
	return user, err
}

// GetUserByID records metrics for user lookup by id.
func (u *userUseCaseWithMetrics) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByID(ctx, id)
	u.record(ctx, "user_get", start, err)
	return user, err
}

// ChangePassword records metrics for password changes.
func (u *userUseCaseWithMetrics) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	start := time.Now()
	err := u.next.ChangePassword(ctx, id, newPassword)
	u.record(ctx, "user_change_password", start, err)
	return err
}

// RotateSecurityStamp records metrics for security stamp rotation.
func (u *userUseCaseWithMetrics) RotateSecurityStamp(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.RotateSecurityStamp(ctx, id)
	u.record(ctx, "user_rotate_security_stamp", start, err)
	return user, err
}
