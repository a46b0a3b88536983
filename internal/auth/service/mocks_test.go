package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/cache"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T) *cache.ExpiringCache[[]authDomain.Claim] {
	t.Helper()
	c, err := cache.NewExpiringCache[[]authDomain.Claim](100, 5*time.Minute)
	require.NoError(t, err)
	return c
}

func newTestUser() *userDomain.User {
	return &userDomain.User{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "John Doe",
		Email:         "john@example.com",
		SecurityStamp: "stamp-1",
	}
}

// mockUserFinder supports no optional capability.
type mockUserFinder struct {
	mock.Mock
}

func (m *mockUserFinder) FindUserByID(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// mockUserStore supports user claims and user roles.
type mockUserStore struct {
	mockUserFinder
}

func (m *mockUserStore) GetUserClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

func (m *mockUserStore) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockRoleFinder supports no optional capability.
type mockRoleFinder struct {
	mock.Mock
}

func (m *mockRoleFinder) FindRoleByName(ctx context.Context, name string) (*authDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

// mockRoleStore supports role claims.
type mockRoleStore struct {
	mockRoleFinder
}

func (m *mockRoleStore) GetRoleClaims(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

type mockPermissionResolver struct {
	mock.Mock
}

func (m *mockPermissionResolver) Resolve(
	ctx context.Context,
	user *userDomain.User,
) ([]authDomain.Claim, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}
