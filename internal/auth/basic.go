package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBasicUsers is the demonstration Basic-Auth table used when the
// configuration does not supply one.
var DefaultBasicUsers = map[string]string{
	"admin":    "adminpass",
	"testuser": "testpass",
}

// BasicVerifier checks username/password pairs against a fixed table of
// salted bcrypt hashes. The table is read-only after construction.
type BasicVerifier struct {
	hashes map[string][]byte
	// dummy is compared against for unknown users so that lookups for
	// missing and present usernames cost about the same.
	dummy []byte
}

// NewBasicVerifier hashes the plaintext table. cost is a bcrypt cost;
// zero selects bcrypt.DefaultCost.
func NewBasicVerifier(users map[string]string, cost int) (*BasicVerifier, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	v := &BasicVerifier{hashes: make(map[string][]byte, len(users))}
	for username, password := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash basic auth password for %q: %w", username, err)
		}
		v.hashes[username] = hash
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("unused-basic-auth-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	v.dummy = dummy
	return v, nil
}

// Verify returns the username when the pair matches the table.
func (v *BasicVerifier) Verify(username, password string) (string, error) {
	hash, ok := v.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
		return "", ErrAuthInvalid
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrAuthInvalid
	}
	return username, nil
}
