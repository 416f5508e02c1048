package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/auth-examples/internal/models"
)

func managerAt(secret string, at time.Time) *TokenManager {
	m := NewTokenManager(secret, time.Hour)
	m.now = func() time.Time { return at }
	return m
}

func TestGenerateThenVerify(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)

	token, err := m.Generate(models.User{ID: 42})
	require.NoError(t, err)

	subject, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", subject)
}

func TestGenerate_Claims(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := managerAt("s3cret", issued)

	token, err := m.Generate(models.User{ID: 7})
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_WithinWindow(t *testing.T) {
	issued := time.Now().Add(-59 * time.Minute)
	token, err := managerAt("s3cret", issued).Generate(models.User{ID: 1})
	require.NoError(t, err)

	subject, err := NewTokenManager("s3cret", time.Hour).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "1", subject)
}

func TestVerify_Expired(t *testing.T) {
	token, err := managerAt("s3cret", time.Now().Add(-2*time.Hour)).Generate(models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("s3cret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrAuthExpired)
}

func TestVerify_ExpiredWithForeignSignature(t *testing.T) {
	token, err := managerAt("other", time.Now().Add(-2*time.Hour)).Generate(models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("s3cret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrAuthExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("other", time.Hour).Generate(models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("s3cret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrAuthInvalid)
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Now()
	sign := func(method jwt.SigningMethod, claims jwt.Claims, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{
		Subject:   "1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	tests := map[string]string{
		"garbage":   "not-a-jwt",
		"empty":     "",
		"hs384":     sign(jwt.SigningMethodHS384, valid, []byte("s3cret")),
		"alg none":  sign(jwt.SigningMethodNone, valid, jwt.UnsafeAllowNoneSignatureType),
		"no expiry": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}, []byte("s3cret")),
		"no subject": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}, []byte("s3cret")),
		"issued in future": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now.Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		}, []byte("s3cret")),
	}

	m := NewTokenManager("s3cret", time.Hour)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			require.ErrorIs(t, err, ErrAuthInvalid)
		})
	}
}

func TestVerifyHeader(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)
	token, err := m.Generate(models.User{ID: 9})
	require.NoError(t, err)

	subject, err := m.VerifyHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(9), subject)

	for _, header := range []string{"", token, "bearer " + token, "Bearer" + token, "Token " + token} {
		_, err := m.VerifyHeader(header)
		assert.ErrorIs(t, err, ErrAuthMalformed, "header %q", header)
	}

	_, err = m.VerifyHeader("Bearer ")
	assert.ErrorIs(t, err, ErrAuthInvalid)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "missing", Reason(ErrAuthMissing))
	assert.Equal(t, "malformed", Reason(ErrAuthMalformed))
	assert.Equal(t, "expired", Reason(ErrAuthExpired))
	assert.Equal(t, "invalid", Reason(ErrAuthInvalid))
	assert.Equal(t, "error", Reason(context.Canceled))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{Subject: "42", Mechanism: MechanismJWT})
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "42", p.Subject)
	assert.Equal(t, MechanismJWT, p.Mechanism)
}
