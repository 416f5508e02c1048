package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/auth-examples/internal/models"
)

// DefaultSecret is used when no SECRET_KEY is configured. Anyone who knows
// it can mint tokens, so startup logs a warning when it is in effect.
const DefaultSecret = "supersecretkey"

const bearerPrefix = "Bearer "

// TokenManager issues and verifies HS256 JWTs for registered users.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret and lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a signed JWT whose subject is the user's id.
func (t *TokenManager) Generate(user models.User) (string, error) {
	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyHeader checks an Authorization header of the form "Bearer <token>"
// and returns the token subject.
func (t *TokenManager) VerifyHeader(header string) (string, error) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", ErrAuthMalformed
	}
	return t.Verify(token)
}

// Verify checks the token's signature and expiry and returns its subject.
// A token whose exp is in the past yields ErrAuthExpired whether or not its
// signature verifies; every other failure is ErrAuthInvalid.
func (t *TokenManager) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	// ParseWithClaims decodes the claims before it checks the signature, so
	// claims is populated for well-formed tokens even when verification fails.
	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || t.expired(claims) {
			return "", fmt.Errorf("%w: %v", ErrAuthExpired, err)
		}
		return "", fmt.Errorf("%w: %v", ErrAuthInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrAuthInvalid)
	}
	return claims.Subject, nil
}

func (t *TokenManager) expired(claims *jwt.RegisteredClaims) bool {
	return claims.ExpiresAt != nil && !t.now().Before(claims.ExpiresAt.Time)
}
