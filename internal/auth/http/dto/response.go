package dto

import (
	"time"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
)

// IssueTokenResponse contains the result of issuing a token.
// SECURITY: The token is only returned once and must be saved securely.
type IssueTokenResponse struct {
	Token       string    `json:"token"` //nolint:gosec // returned once on issue
	ExpiresAt   time.Time `json:"expires_at"`
	Permissions []string  `json:"permissions"`
}

// MapIssueTokenOutputToResponse converts the use case output to an API response.
func MapIssueTokenOutputToResponse(output *authDomain.IssueTokenOutput) IssueTokenResponse {
	permissions := output.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return IssueTokenResponse{
		Token:       output.PlainToken,
		ExpiresAt:   output.ExpiresAt,
		Permissions: permissions,
	}
}

// RoleResponse represents a role in API responses.
type RoleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *authDomain.Role) RoleResponse {
	return RoleResponse{
		ID:        role.ID.String(),
		Name:      role.Name,
		CreatedAt: role.CreatedAt,
	}
}

// ListRolesResponse represents a paginated list of roles.
type ListRolesResponse struct {
	Data []RoleResponse `json:"data"`
}

// MapRolesToListResponse converts domain roles to a list API response.
func MapRolesToListResponse(roles []*authDomain.Role) ListRolesResponse {
	data := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, MapRoleToResponse(role))
	}
	return ListRolesResponse{Data: data}
}

// ClaimResponse represents a claim in API responses.
type ClaimResponse struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MapClaimToResponse converts a domain claim to an API response.
func MapClaimToResponse(claim authDomain.Claim) ClaimResponse {
	return ClaimResponse{Type: claim.Type, Value: claim.Value}
}

// ListClaimsResponse represents a list of claims.
type ListClaimsResponse struct {
	Data []ClaimResponse `json:"data"`
}

// MapClaimsToListResponse converts domain claims to a list API response.
func MapClaimsToListResponse(claims []authDomain.Claim) ListClaimsResponse {
	data := make([]ClaimResponse, 0, len(claims))
	for _, claim := range claims {
		data = append(data, MapClaimToResponse(claim))
	}
	return ListClaimsResponse{Data: data}
}

// ListNamesResponse represents a list of role or permission names.
type ListNamesResponse struct {
	Data []string `json:"data"`
}

// MapNamesToListResponse wraps names in a list API response. Never returns a nil list.
func MapNamesToListResponse(names []string) ListNamesResponse {
	if names == nil {
		names = []string{}
	}
	return ListNamesResponse{Data: names}
}

// MapPermissionClaimsToListResponse lists the values of permission claims.
func MapPermissionClaimsToListResponse(claims []authDomain.Claim) ListNamesResponse {
	values := make([]string, 0, len(claims))
	for _, claim := range claims {
		values = append(values, claim.Value)
	}
	return ListNamesResponse{Data: values}
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Permissions []string        `json:"permissions"`
	Claims      []ClaimResponse `json:"claims"`
}

// MapPrincipalToMeResponse describes principal. The security stamp claim is
// never echoed back.
func MapPrincipalToMeResponse(principal *authDomain.Principal) MeResponse {
	response := MeResponse{
		Permissions: principal.Permissions(),
		Claims:      []ClaimResponse{},
	}

	if userID, ok := principal.UserID(); ok {
		response.UserID = userID.String()
	}

	identity := principal.Identity()
	if identity == nil {
		return response
	}

	if c, ok := identity.FindFirst(authDomain.NameClaimType); ok {
		response.Name = c.Value
	}
	if c, ok := identity.FindFirst(authDomain.EmailClaimType); ok {
		response.Email = c.Value
	}

	for _, c := range identity.Claims() {
		if c.IsType(authDomain.SecurityStampClaimType) {
			continue
		}
		response.Claims = append(response.Claims, MapClaimToResponse(c))
	}
	return response
}
