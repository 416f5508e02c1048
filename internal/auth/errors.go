package auth

import "errors"

// Failure kinds produced by the verifiers. The route layer turns each into a
// 401 with a fixed message.
var (
	// ErrAuthMissing means the credential header was absent or empty.
	ErrAuthMissing = errors.New("credentials missing")
	// ErrAuthMalformed means the credential header had the wrong shape.
	ErrAuthMalformed = errors.New("credentials malformed")
	// ErrAuthExpired means a token's exp claim is in the past.
	ErrAuthExpired = errors.New("credentials expired")
	// ErrAuthInvalid means the credentials were present but did not verify.
	ErrAuthInvalid = errors.New("credentials invalid")
)

// Reason returns a short, stable label for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrAuthMissing):
		return "missing"
	case errors.Is(err, ErrAuthMalformed):
		return "malformed"
	case errors.Is(err, ErrAuthExpired):
		return "expired"
	case errors.Is(err, ErrAuthInvalid):
		return "invalid"
	default:
		return "error"
	}
}
