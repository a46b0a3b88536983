package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

func TestPrincipalFactory_CreateIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_BaseClaimsAndPermissions", func(t *testing.T) {
		user := newTestUser()
		resolver := &mockPermissionResolver{}
		resolver.On("Resolve", ctx, user).Return([]authDomain.Claim{usersView, rolesEdit}, nil)

		identity, err := NewPrincipalFactory(authDomain.BearerAuthenticationType, resolver).
			CreateIdentity(ctx, user)
		require.NoError(t, err)

		assert.True(t, identity.IsAuthenticated())
		assert.Equal(t, []authDomain.Claim{
			{Type: authDomain.SubjectClaimType, Value: user.ID.String()},
			{Type: authDomain.NameClaimType, Value: "John Doe"},
			{Type: authDomain.EmailClaimType, Value: "john@example.com"},
			{Type: authDomain.SecurityStampClaimType, Value: "stamp-1"},
			usersView,
			rolesEdit,
		}, identity.Claims())
		resolver.AssertExpectations(t)
	})

	t.Run("Success_NilUserReturnsBaseIdentity", func(t *testing.T) {
		resolver := &mockPermissionResolver{}

		identity, err := NewPrincipalFactory("test", resolver).CreateIdentity(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, "test", identity.AuthenticationType)
		assert.Empty(t, identity.Claims())
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("Success_UserWithoutIDReturnsBaseIdentity", func(t *testing.T) {
		resolver := &mockPermissionResolver{}

		identity, err := NewPrincipalFactory("test", resolver).
			CreateIdentity(ctx, &userDomain.User{Name: "ghost"})
		require.NoError(t, err)

		assert.Empty(t, identity.Claims())
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("Error_ResolverFault", func(t *testing.T) {
		user := newTestUser()
		storeErr := errors.New("db down")
		resolver := &mockPermissionResolver{}
		resolver.On("Resolve", ctx, user).Return(nil, storeErr)

		identity, err := NewPrincipalFactory("test", resolver).CreateIdentity(ctx, user)
		assert.ErrorIs(t, err, storeErr)
		assert.Nil(t, identity)
	})
}

func TestPrincipalFactory_WithResolverAndCache(t *testing.T) {
	ctx := context.Background()
	user := newTestUser()
	editor := newRole("Editor")

	users := &mockUserStore{}
	roles := &mockRoleStore{}
	users.On("GetUserClaims", mock.Anything, user.ID).Return([]authDomain.Claim{usersView}, nil).Once()
	users.On("GetUserRoles", mock.Anything, user.ID).Return([]string{"Editor"}, nil).Once()
	roles.On("FindRoleByName", mock.Anything, "Editor").Return(editor, nil).Once()
	roles.On("GetRoleClaims", mock.Anything, editor.ID).Return([]authDomain.Claim{rolesEdit}, nil).Once()

	resolver := NewPermissionResolver(users, roles, newTestCache(t), createTestLogger())
	factory := NewPrincipalFactory("test", resolver)
	transformation := NewClaimsTransformation(users, resolver)

	identity, err := factory.CreateIdentity(ctx, user)
	require.NoError(t, err)
	assert.True(t, identity.HasClaim(authDomain.PermissionClaimType, "Permissions.Users.View"))
	assert.True(t, identity.HasClaim(authDomain.PermissionClaimType, "Permissions.Roles.Edit"))

	// Both hooks share the cache: the transformation does not query claims again.
	users.On("FindUserByID", mock.Anything, user.ID).Return(user, nil)
	principal := authDomain.NewPrincipal(authDomain.NewIdentity("test", BaseClaims(user)...))

	transformed, err := transformation.Transform(ctx, principal)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"Permissions.Users.View", "Permissions.Roles.Edit"},
		transformed.Permissions(),
	)

	users.AssertNumberOfCalls(t, "GetUserClaims", 1)
	roles.AssertNumberOfCalls(t, "GetRoleClaims", 1)
}
