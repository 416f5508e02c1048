package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-KEY"

// APIKeyVerifier compares a header value against one configured key.
// Only the key's hash is kept, and comparison is constant-time.
type APIKeyVerifier struct {
	hash       [32]byte
	configured bool
}

// NewAPIKeyVerifier creates a verifier for key. An empty key rejects every
// request that presents one.
func NewAPIKeyVerifier(key string) *APIKeyVerifier {
	return &APIKeyVerifier{
		hash:       sha256.Sum256([]byte(key)),
		configured: key != "",
	}
}

// Verify returns ErrAuthMissing for an empty value and ErrAuthInvalid for
// any value that is not byte-for-byte the configured key.
func (v *APIKeyVerifier) Verify(value string) error {
	if value == "" {
		return ErrAuthMissing
	}
	got := sha256.Sum256([]byte(value))
	if !v.configured || subtle.ConstantTimeCompare(got[:], v.hash[:]) != 1 {
		return ErrAuthInvalid
	}
	return nil
}
