// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of TokenUseCase.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method of TokenUseCase.
func (m *MockTokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// Revoke mocks the Revoke method of TokenUseCase.
func (m *MockTokenUseCase) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

// PurgeExpired mocks the PurgeExpired method of TokenUseCase.
func (m *MockTokenUseCase) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoleUseCase is a mock implementation of RoleUseCase for testing.
type MockRoleUseCase struct {
	mock.Mock
}

// Create mocks the Create method of RoleUseCase.
func (m *MockRoleUseCase) Create(ctx context.Context, name string) (*authDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

// Get mocks the Get method of RoleUseCase.
func (m *MockRoleUseCase) Get(ctx context.Context, name string) (*authDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

// List mocks the List method of RoleUseCase.
func (m *MockRoleUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Role), args.Error(1)
}

// Delete mocks the Delete method of RoleUseCase.
func (m *MockRoleUseCase) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// AddClaim mocks the AddClaim method of RoleUseCase.
func (m *MockRoleUseCase) AddClaim(
	ctx context.Context,
	name string,
	claim authDomain.Claim,
) (authDomain.Claim, error) {
	args := m.Called(ctx, name, claim)
	return args.Get(0).(authDomain.Claim), args.Error(1)
}

// RemoveClaim mocks the RemoveClaim method of RoleUseCase.
func (m *MockRoleUseCase) RemoveClaim(ctx context.Context, name string, claim authDomain.Claim) error {
	args := m.Called(ctx, name, claim)
	return args.Error(0)
}

// ListClaims mocks the ListClaims method of RoleUseCase.
func (m *MockRoleUseCase) ListClaims(ctx context.Context, name string) ([]authDomain.Claim, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

// MockUserAccessUseCase is a mock implementation of UserAccessUseCase for testing.
type MockUserAccessUseCase struct {
	mock.Mock
}

// AssignRole mocks the AssignRole method of UserAccessUseCase.
func (m *MockUserAccessUseCase) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	args := m.Called(ctx, userID, roleName)
	return args.Error(0)
}

// RemoveRole mocks the RemoveRole method of UserAccessUseCase.
func (m *MockUserAccessUseCase) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	args := m.Called(ctx, userID, roleName)
	return args.Error(0)
}

// ListRoles mocks the ListRoles method of UserAccessUseCase.
func (m *MockUserAccessUseCase) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// AddClaim mocks the AddClaim method of UserAccessUseCase.
func (m *MockUserAccessUseCase) AddClaim(
	ctx context.Context,
	userID uuid.UUID,
	claim authDomain.Claim,
) (authDomain.Claim, error) {
	args := m.Called(ctx, userID, claim)
	return args.Get(0).(authDomain.Claim), args.Error(1)
}

// RemoveClaim mocks the RemoveClaim method of UserAccessUseCase.
func (m *MockUserAccessUseCase) RemoveClaim(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	args := m.Called(ctx, userID, claim)
	return args.Error(0)
}

// ListClaims mocks the ListClaims method of UserAccessUseCase.
func (m *MockUserAccessUseCase) ListClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

// EffectivePermissions mocks the EffectivePermissions method of UserAccessUseCase.
func (m *MockUserAccessUseCase) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
) ([]authDomain.Claim, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

// MockClaimsTransformation is a mock implementation of ClaimsTransformation for testing.
type MockClaimsTransformation struct {
	mock.Mock
}

// Transform mocks the Transform method of ClaimsTransformation.
func (m *MockClaimsTransformation) Transform(
	ctx context.Context,
	principal *authDomain.Principal,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}
