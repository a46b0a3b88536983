// Package domain defines authorization domain models: claims, identities,
// principals, roles, the permission registry and persisted tokens.
package domain

import (
	"golang.org/x/text/cases"
)

// Well-known claim types.
const (
	// PermissionClaimType marks a claim whose value names a registered permission.
	PermissionClaimType = "Permission"

	SubjectClaimType       = "sub"
	NameClaimType          = "name"
	EmailClaimType         = "email"
	SecurityStampClaimType = "security_stamp"
)

// Claim is a (type, value) pair attached to an identity.
//
// Two claims are equal when their types match case-insensitively (Unicode
// case folding) and their values match byte for byte.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewPermissionClaim returns a claim of PermissionClaimType.
func NewPermissionClaim(value string) Claim {
	return Claim{Type: PermissionClaimType, Value: value}
}

// Equal reports whether c and other are the same claim.
func (c Claim) Equal(other Claim) bool {
	return c.Value == other.Value && foldType(c.Type) == foldType(other.Type)
}

// IsType reports whether the claim has the given type, ignoring case.
func (c Claim) IsType(claimType string) bool {
	return foldType(c.Type) == foldType(claimType)
}

// IsPermission reports whether c is a permission claim.
func (c Claim) IsPermission() bool {
	return c.IsType(PermissionClaimType)
}

type claimKey struct {
	claimType string
	value     string
}

func (c Claim) key() claimKey {
	return claimKey{claimType: foldType(c.Type), value: c.Value}
}

// foldType folds a claim type for comparison.
func foldType(claimType string) string {
	return cases.Fold().String(claimType)
}

// FilterPermissions returns the permission claims of claims in their original order.
func FilterPermissions(claims []Claim) []Claim {
	var permissions []Claim
	for _, c := range claims {
		if c.IsPermission() {
			permissions = append(permissions, c)
		}
	}
	return permissions
}

// ClaimSet is an insertion-ordered set of claims using Claim equality.
// The zero value is ready to use. A ClaimSet is not safe for concurrent use.
type ClaimSet struct {
	index map[claimKey]struct{}
	items []Claim
}

// NewClaimSet creates a set holding claims, duplicates removed.
func NewClaimSet(claims ...Claim) *ClaimSet {
	s := &ClaimSet{}
	for _, c := range claims {
		s.Add(c)
	}
	return s
}

// Add inserts c and reports whether it was not already present.
func (s *ClaimSet) Add(c Claim) bool {
	if s.index == nil {
		s.index = make(map[claimKey]struct{})
	}

	k := c.key()
	if _, ok := s.index[k]; ok {
		return false
	}

	s.index[k] = struct{}{}
	s.items = append(s.items, c)
	return true
}

// Contains reports whether an equal claim is in the set.
func (s *ClaimSet) Contains(c Claim) bool {
	_, ok := s.index[c.key()]
	return ok
}

// Len returns the number of claims in the set.
func (s *ClaimSet) Len() int {
	return len(s.items)
}

// Slice returns a copy of the claims in insertion order. It never returns nil.
func (s *ClaimSet) Slice() []Claim {
	out := make([]Claim, len(s.items))
	copy(out, s.items)
	return out
}
