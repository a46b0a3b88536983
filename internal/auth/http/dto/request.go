// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	customValidation "github.com/allisson/permguard/internal/validation"
)

// IssueTokenRequest contains the credentials exchanged for a bearer token.
type IssueTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request credential
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// CreateRoleRequest contains the parameters for creating a role.
type CreateRoleRequest struct {
	Name string `json:"name"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 100),
			customValidation.RoleName,
		),
	)
}

// ClaimRequest identifies a claim attached to a user or a role.
type ClaimRequest struct {
	Type  string `json:"type"  form:"type"`
	Value string `json:"value" form:"value"`
}

// Validate checks if the claim request is valid.
func (r *ClaimRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Type,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Value,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// ToDomain converts the request to a domain claim.
func (r *ClaimRequest) ToDomain() authDomain.Claim {
	return authDomain.Claim{Type: r.Type, Value: r.Value}
}

// AssignRoleRequest contains the role to assign to a user.
type AssignRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks if the assign role request is valid.
func (r *AssignRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Role,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
