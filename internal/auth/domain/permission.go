package domain

import (
	"slices"
)

// Module groups related permissions.
type Module string

// Action is an operation a permission grants within a module.
type Action string

// Registered modules.
const (
	UsersModule       Module = "Users"
	RolesModule       Module = "Roles"
	PermissionsModule Module = "Permissions"
)

// Registered actions.
const (
	ViewAction   Action = "View"
	CreateAction Action = "Create"
	EditAction   Action = "Edit"
	DeleteAction Action = "Delete"
)

var (
	registeredModules = []Module{UsersModule, RolesModule, PermissionsModule}
	registeredActions = []Action{ViewAction, CreateAction, EditAction, DeleteAction}
)

// PermissionName returns the canonical permission value for module and action,
// for example "Permissions.Users.View".
func PermissionName(module Module, action Action) string {
	return "Permissions." + string(module) + "." + string(action)
}

// Permission values used by the HTTP API.
var (
	PermissionUsersView   = PermissionName(UsersModule, ViewAction)
	PermissionUsersCreate = PermissionName(UsersModule, CreateAction)
	PermissionUsersEdit   = PermissionName(UsersModule, EditAction)
	PermissionUsersDelete = PermissionName(UsersModule, DeleteAction)

	PermissionRolesView   = PermissionName(RolesModule, ViewAction)
	PermissionRolesCreate = PermissionName(RolesModule, CreateAction)
	PermissionRolesEdit   = PermissionName(RolesModule, EditAction)
	PermissionRolesDelete = PermissionName(RolesModule, DeleteAction)

	PermissionPermissionsView = PermissionName(PermissionsModule, ViewAction)
)

// AllPermissions returns every registered permission, grouped by module.
func AllPermissions() []string {
	all := make([]string, 0, len(registeredModules)*len(registeredActions))
	for _, m := range registeredModules {
		for _, a := range registeredActions {
			all = append(all, PermissionName(m, a))
		}
	}
	return all
}

// IsRegisteredPermission reports whether value names a registered permission.
// Matching is exact.
func IsRegisteredPermission(value string) bool {
	return slices.Contains(AllPermissions(), value)
}
