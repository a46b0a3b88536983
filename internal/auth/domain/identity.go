package domain

import (
	"github.com/google/uuid"
)

// BearerAuthenticationType is the authentication type of identities rebuilt from bearer tokens.
const BearerAuthenticationType = "Bearer"

// Identity is a set of claims issued by one authentication scheme.
// An identity is authenticated when its AuthenticationType is not empty.
type Identity struct {
	AuthenticationType string
	claims             []Claim
}

// NewIdentity creates an identity carrying claims in the given order.
func NewIdentity(authenticationType string, claims ...Claim) *Identity {
	id := &Identity{AuthenticationType: authenticationType}
	id.claims = append(id.claims, claims...)
	return id
}

// IsAuthenticated reports whether the identity was produced by an authentication scheme.
func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.AuthenticationType != ""
}

// AddClaim appends c without checking for duplicates.
func (i *Identity) AddClaim(c Claim) {
	i.claims = append(i.claims, c)
}

// Claims returns a copy of the identity's claims.
func (i *Identity) Claims() []Claim {
	out := make([]Claim, len(i.claims))
	copy(out, i.claims)
	return out
}

// HasClaim reports whether the identity carries a claim equal to (claimType, value).
func (i *Identity) HasClaim(claimType, value string) bool {
	target := Claim{Type: claimType, Value: value}
	for _, c := range i.claims {
		if c.Equal(target) {
			return true
		}
	}
	return false
}

// HasClaimType reports whether the identity carries any claim of claimType.
func (i *Identity) HasClaimType(claimType string) bool {
	_, ok := i.FindFirst(claimType)
	return ok
}

// FindFirst returns the first claim of claimType.
func (i *Identity) FindFirst(claimType string) (Claim, bool) {
	for _, c := range i.claims {
		if c.IsType(claimType) {
			return c, true
		}
	}
	return Claim{}, false
}

// Clone returns a deep copy of the identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	return NewIdentity(i.AuthenticationType, i.claims...)
}

// Principal is the caller of a request: one or more identities, the first
// being the primary one.
type Principal struct {
	identities []*Identity
}

// NewPrincipal creates a principal from identities. Nil identities are ignored.
func NewPrincipal(identities ...*Identity) *Principal {
	p := &Principal{}
	for _, id := range identities {
		if id != nil {
			p.identities = append(p.identities, id)
		}
	}
	return p
}

// AnonymousPrincipal returns a principal with a single unauthenticated identity.
func AnonymousPrincipal() *Principal {
	return NewPrincipal(NewIdentity(""))
}

// Identity returns the primary identity, or nil when the principal has none.
func (p *Principal) Identity() *Identity {
	if p == nil || len(p.identities) == 0 {
		return nil
	}
	return p.identities[0]
}

// Identities returns the principal's identities. The slice is a copy; the
// identities are not.
func (p *Principal) Identities() []*Identity {
	out := make([]*Identity, len(p.identities))
	copy(out, p.identities)
	return out
}

// IsAuthenticated reports whether the primary identity is authenticated.
func (p *Principal) IsAuthenticated() bool {
	return p.Identity().IsAuthenticated()
}

// Clone returns a deep copy: changing the clone's identities never affects p.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	clone := &Principal{identities: make([]*Identity, 0, len(p.identities))}
	for _, id := range p.identities {
		clone.identities = append(clone.identities, id.Clone())
	}
	return clone
}

// HasPermission reports whether any identity carries the permission claim value.
func (p *Principal) HasPermission(permission string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.identities {
		if id.HasClaim(PermissionClaimType, permission) {
			return true
		}
	}
	return false
}

// Permissions returns the distinct permission values across all identities.
func (p *Principal) Permissions() []string {
	set := &ClaimSet{}
	if p != nil {
		for _, id := range p.identities {
			for _, c := range FilterPermissions(id.claims) {
				set.Add(c)
			}
		}
	}

	values := make([]string, 0, set.Len())
	for _, c := range set.items {
		values = append(values, c.Value)
	}
	return values
}

// UserID returns the user id carried in the primary identity's subject claim.
func (p *Principal) UserID() (uuid.UUID, bool) {
	id := p.Identity()
	if id == nil {
		return uuid.Nil, false
	}

	sub, ok := id.FindFirst(SubjectClaimType)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(sub.Value)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// SecurityStamp returns the security stamp claim of the primary identity, if any.
func (p *Principal) SecurityStamp() string {
	id := p.Identity()
	if id == nil {
		return ""
	}
	c, _ := id.FindFirst(SecurityStampClaimType)
	return c.Value
}
