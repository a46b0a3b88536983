package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	outboxDomain "github.com/allisson/permguard/internal/outbox/domain"
	appValidation "github.com/allisson/permguard/internal/validation"
)

// normalizeClaim validates claim and gives permission claims the canonical
// type. Permission values must be registered.
func normalizeClaim(claim authDomain.Claim) (authDomain.Claim, error) {
	err := validation.Errors{
		"type": validation.Validate(claim.Type,
			validation.Required,
			appValidation.NotBlank,
			appValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		"value": validation.Validate(claim.Value,
			validation.Required,
			appValidation.NotBlank,
			validation.Length(1, 255),
		),
	}.Filter()
	if err != nil {
		return authDomain.Claim{}, appValidation.WrapValidationError(err)
	}

	if claim.IsPermission() {
		if !authDomain.IsRegisteredPermission(claim.Value) {
			return authDomain.Claim{}, authDomain.ErrUnknownPermission
		}
		claim.Type = authDomain.PermissionClaimType
	}
	return claim, nil
}

// findClaim returns the stored claim equal to claim.
func findClaim(stored []authDomain.Claim, claim authDomain.Claim) (authDomain.Claim, bool) {
	for _, c := range stored {
		if c.Equal(claim) {
			return c, true
		}
	}
	return authDomain.Claim{}, false
}

// claimPayload is the outbox payload of claim events.
type claimPayload struct {
	Owner string `json:"owner"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// recordEvent stores a security event in the transaction carried by ctx.
func recordEvent(ctx context.Context, repo OutboxEventRepository, eventType string, payload any) error {
	event, err := outboxDomain.NewOutboxEvent(eventType, payload)
	if err != nil {
		return err
	}
	return repo.Create(ctx, event)
}
