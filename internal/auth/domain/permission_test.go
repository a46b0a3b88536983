package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPermissionName(t *testing.T) {
	assert.Equal(t, "Permissions.Users.View", PermissionName(UsersModule, ViewAction))
	assert.Equal(t, "Permissions.Roles.Edit", PermissionRolesEdit)
}

func TestAllPermissions(t *testing.T) {
	all := AllPermissions()

	assert.Len(t, all, 12)
	assert.Equal(t, "Permissions.Users.View", all[0])
	assert.Contains(t, all, PermissionPermissionsView)
	assert.Contains(t, all, "Permissions.Permissions.Delete")
}

func TestIsRegisteredPermission(t *testing.T) {
	assert.True(t, IsRegisteredPermission("Permissions.Roles.Delete"))
	assert.False(t, IsRegisteredPermission("permissions.roles.delete"))
	assert.False(t, IsRegisteredPermission("Permissions.Schools.View"))
	assert.False(t, IsRegisteredPermission(""))
}

func TestToken_State(t *testing.T) {
	now := time.Now()
	token := &Token{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, token.IsExpired(now))
	assert.True(t, token.IsExpired(now.Add(time.Minute)))
	assert.False(t, token.IsRevoked())

	token.RevokedAt = &now
	assert.True(t, token.IsRevoked())
}
