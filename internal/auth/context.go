package auth

import "context"

// Mechanism names the scheme that authenticated a request.
type Mechanism string

const (
	MechanismJWT    Mechanism = "jwt"
	MechanismBasic  Mechanism = "basic"
	MechanismAPIKey Mechanism = "apikey"
)

// Principal is the identity produced by a successful verification. It lives
// only for the duration of one request.
type Principal struct {
	// Subject is the user id for JWT, the username for Basic, and empty for
	// API keys, which carry no identity.
	Subject   string
	Mechanism Mechanism
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
