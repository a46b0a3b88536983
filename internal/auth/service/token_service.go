package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/permguard/internal/errors"
)

const (
	tokenBytes         = 32
	securityStampBytes = 20
)

// tokenService implements TokenService using SHA-256 for token hashing.
type tokenService struct{}

// GenerateToken creates a base64 URL-encoded 32-byte random token and its SHA-256 hash.
func (t *tokenService) GenerateToken() (string, string, error) {
	plainToken, err := randomString(tokenBytes, base64.URLEncoding.EncodeToString)
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken returns the hex-encoded SHA-256 hash of plainToken.
func (t *tokenService) HashToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}

// GenerateSecurityStamp returns 20 random bytes, hex encoded.
func (t *tokenService) GenerateSecurityStamp() (string, error) {
	stamp, err := randomString(securityStampBytes, hex.EncodeToString)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate security stamp")
	}
	return stamp, nil
}

func randomString(n int, encode func([]byte) string) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return encode(b), nil
}

// NewTokenService creates a new TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}
