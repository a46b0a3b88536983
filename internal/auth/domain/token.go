package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is a persisted authentication ticket. Only the SHA-256 hash of the
// bearer token is stored.
type Token struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	Claims    []Claim // claims captured when the ticket was issued
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token is expired at now.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRevoked reports whether the token was revoked.
func (t *Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IssueTokenInput holds the credentials exchanged for a token.
type IssueTokenInput struct {
	Email    string
	Password string
}

// IssueTokenOutput is returned once when a token is issued. PlainToken is never stored.
type IssueTokenOutput struct {
	PlainToken  string
	ExpiresAt   time.Time
	Permissions []string
}
