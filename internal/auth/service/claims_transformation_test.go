package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

func newTicketPrincipal(user *userDomain.User, extra ...authDomain.Claim) *authDomain.Principal {
	claims := append(BaseClaims(user), extra...)
	return authDomain.NewPrincipal(authDomain.NewIdentity(authDomain.BearerAuthenticationType, claims...))
}

func TestClaimsTransformation_Transform(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_UnauthenticatedReturnedAsIs", func(t *testing.T) {
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}
		principal := authDomain.AnonymousPrincipal()

		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, principal)
		require.NoError(t, err)

		assert.Same(t, principal, result)
		users.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("Success_AugmentsCloneOnly", func(t *testing.T) {
		user := newTestUser()
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}
		users.On("FindUserByID", ctx, user.ID).Return(user, nil)
		resolver.On("Resolve", ctx, user).Return([]authDomain.Claim{usersView, rolesEdit}, nil)

		principal := newTicketPrincipal(user)
		before := principal.Identity().Claims()

		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, principal)
		require.NoError(t, err)

		assert.NotSame(t, principal, result)
		assert.Equal(t, before, principal.Identity().Claims())
		assert.False(t, principal.HasPermission("Permissions.Users.View"))
		assert.True(t, result.HasPermission("Permissions.Users.View"))
		assert.True(t, result.HasPermission("Permissions.Roles.Edit"))
		assert.Len(t, result.Identity().Claims(), len(before)+2)
	})

	t.Run("Success_ShortCircuitsWhenPermissionPresent", func(t *testing.T) {
		user := newTestUser()
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}

		principal := newTicketPrincipal(user, authDomain.Claim{Type: "permission", Value: "Permissions.Users.View"})

		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, principal)
		require.NoError(t, err)

		assert.NotSame(t, principal, result)
		assert.Equal(t, principal.Identity().Claims(), result.Identity().Claims())
		users.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("Success_UnknownUserReturnsClone", func(t *testing.T) {
		user := newTestUser()
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}
		users.On("FindUserByID", ctx, user.ID).Return(nil, userDomain.ErrUserNotFound)

		principal := newTicketPrincipal(user)

		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, principal)
		require.NoError(t, err)

		assert.NotSame(t, principal, result)
		assert.Equal(t, principal.Identity().Claims(), result.Identity().Claims())
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("Success_NoSubjectReturnsClone", func(t *testing.T) {
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}
		principal := authDomain.NewPrincipal(authDomain.NewIdentity("test",
			authDomain.Claim{Type: authDomain.NameClaimType, Value: "service"}))

		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, principal)
		require.NoError(t, err)

		assert.Equal(t, principal.Identity().Claims(), result.Identity().Claims())
		users.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
	})

	t.Run("Success_MergeDoesNotDuplicate", func(t *testing.T) {
		user := newTestUser()
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}
		users.On("FindUserByID", ctx, user.ID).Return(user, nil)
		// The resolver returns a claim that equals a non-permission claim
		// already on the identity.
		dup := authDomain.Claim{Type: "EMAIL", Value: user.Email}
		resolver.On("Resolve", ctx, user).Return([]authDomain.Claim{dup, usersView}, nil)

		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, newTicketPrincipal(user))
		require.NoError(t, err)

		assert.Len(t, result.Identity().Claims(), 5)
	})

	t.Run("Error_UserLookupFault", func(t *testing.T) {
		user := newTestUser()
		storeErr := errors.New("db down")
		users := &mockUserFinder{}
		users.On("FindUserByID", ctx, user.ID).Return(nil, storeErr)

		result, err := NewClaimsTransformation(users, &mockPermissionResolver{}).
			Transform(ctx, newTicketPrincipal(user))
		assert.ErrorIs(t, err, storeErr)
		assert.Nil(t, result)
	})

	t.Run("Error_ResolverFault", func(t *testing.T) {
		user := newTestUser()
		storeErr := errors.New("db down")
		users := &mockUserFinder{}
		resolver := &mockPermissionResolver{}
		users.On("FindUserByID", ctx, user.ID).Return(user, nil)
		resolver.On("Resolve", ctx, user).Return(nil, storeErr)

		principal := newTicketPrincipal(user)
		result, err := NewClaimsTransformation(users, resolver).Transform(ctx, principal)
		assert.ErrorIs(t, err, storeErr)
		assert.Nil(t, result)
		assert.False(t, principal.Identity().HasClaimType(authDomain.PermissionClaimType))
	})
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	user := newTestUser()
	role := newRole("Editor")

	users := &mockUserRepo{}
	userClaims := &mockUserClaimRepo{}
	userRoles := &mockUserRoleRepo{}
	roles := &mockRoleRepo{}
	roleClaims := &mockRoleClaimRepo{}

	users.On("GetByID", ctx, user.ID).Return(user, nil)
	userClaims.On("ListByUserID", ctx, user.ID).Return([]authDomain.Claim{usersView}, nil)
	userRoles.On("ListRoleNamesByUserID", ctx, user.ID).Return([]string{"Editor"}, nil)
	roles.On("GetByName", ctx, "Editor").Return(role, nil)
	roleClaims.On("ListByRoleID", ctx, role.ID).Return([]authDomain.Claim{rolesEdit}, nil)

	store := NewStore(users, userClaims, userRoles, roles, roleClaims)

	gotUser, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)

	claims, err := store.GetUserClaims(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []authDomain.Claim{usersView}, claims)

	names, err := store.GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Editor"}, names)

	gotRole, err := store.FindRoleByName(ctx, "Editor")
	require.NoError(t, err)
	assert.Equal(t, role, gotRole)

	claims, err = store.GetRoleClaims(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []authDomain.Claim{rolesEdit}, claims)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

type mockUserClaimRepo struct{ mock.Mock }

func (m *mockUserClaimRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

type mockUserRoleRepo struct{ mock.Mock }

func (m *mockUserRoleRepo) ListRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

type mockRoleRepo struct{ mock.Mock }

func (m *mockRoleRepo) GetByName(ctx context.Context, name string) (*authDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

type mockRoleClaimRepo struct{ mock.Mock }

func (m *mockRoleClaimRepo) ListByRoleID(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}
