package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/hongminglow/auth-examples/internal/auth"
	"github.com/hongminglow/auth-examples/internal/http/respond"
	"github.com/hongminglow/auth-examples/internal/observability"
	"github.com/hongminglow/auth-examples/internal/ratelimit"
)

// Guard inspects a request and either passes it on or writes a terminal
// response.
type Guard func(http.Handler) http.Handler

// Chain wraps h with guards. The first guard sees the request first, so
// Chain(h, RateLimit(...), RequireJWT(...)) rejects over-quota requests
// before any token is looked at.
func Chain(h http.Handler, guards ...Guard) http.Handler {
	for i := len(guards) - 1; i >= 0; i-- {
		h = guards[i](h)
	}
	return h
}

// TokenVerifier validates an Authorization header and returns the subject.
type TokenVerifier interface {
	VerifyHeader(header string) (string, error)
}

// PasswordVerifier validates a Basic-Auth pair and returns the username.
type PasswordVerifier interface {
	Verify(username, password string) (string, error)
}

// KeyVerifier validates an API key header value.
type KeyVerifier interface {
	Verify(value string) error
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
	Rate() ratelimit.Rate
}

// basicRealm is sent in the WWW-Authenticate challenge.
const basicRealm = `Basic realm="Authentication Required"`

var jwtMessages = map[error]string{
	auth.ErrAuthMalformed: "Invalid token format",
	auth.ErrAuthExpired:   "Token has expired",
	auth.ErrAuthInvalid:   "Invalid token",
}

var apiKeyMessages = map[error]string{
	auth.ErrAuthMissing: "Missing API Key",
	auth.ErrAuthInvalid: "Invalid API Key",
}

// RateLimit rejects requests over the limiter's quota with 429. Requests are
// keyed by client IP, independent of any credentials they carry. When the
// counter store fails the request is let through and the failure logged.
func RateLimit(limiter Limiter, route string, log *slog.Logger) Guard {
	limit := strconv.Itoa(limiter.Rate().Limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			decision, err := limiter.Allow(r.Context(), route+":"+ip)
			switch {
			case errors.Is(err, ratelimit.ErrRateLimited):
				log.Warn("rate limit exceeded", "route", route, "client_ip", ip)
				observability.RateLimitRejectedTotal.WithLabelValues(route).Inc()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision)))
				respond.Message(w, http.StatusTooManyRequests, "Rate limit exceeded: "+limiter.Rate().String())
				return
			case err != nil:
				log.Error("rate limiter unavailable; allowing request", "route", route, "error", err)
			default:
				w.Header().Set("X-RateLimit-Limit", limit)
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJWT admits requests carrying "Authorization: Bearer <token>" with a
// valid token and exposes the token subject as the request principal.
func RequireJWT(tokens TokenVerifier, log *slog.Logger) Guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := tokens.VerifyHeader(r.Header.Get("Authorization"))
			if err != nil {
				reject(w, r, log, auth.MechanismJWT, err, messageFor(jwtMessages, err, "Invalid token"))
				return
			}
			ctx := auth.WithPrincipal(r.Context(), auth.Principal{Subject: subject, Mechanism: auth.MechanismJWT})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBasic admits requests with valid HTTP Basic credentials and
// challenges everything else.
func RequireBasic(verifier PasswordVerifier, log *slog.Logger) Guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			err := auth.ErrAuthMissing
			if ok {
				username, err = verifier.Verify(username, password)
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", basicRealm)
				reject(w, r, log, auth.MechanismBasic, err, "Unauthorized Access")
				return
			}
			ctx := auth.WithPrincipal(r.Context(), auth.Principal{Subject: username, Mechanism: auth.MechanismBasic})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIKey admits requests whose X-API-KEY header equals the
// configured key.
func RequireAPIKey(verifier KeyVerifier, log *slog.Logger) Guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.Verify(r.Header.Get(auth.APIKeyHeader)); err != nil {
				reject(w, r, log, auth.MechanismAPIKey, err, messageFor(apiKeyMessages, err, "Invalid API Key"))
				return
			}
			ctx := auth.WithPrincipal(r.Context(), auth.Principal{Mechanism: auth.MechanismAPIKey})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the host part of the connection's remote address.
// Forwarding headers are ignored; they are client-controlled.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func reject(w http.ResponseWriter, r *http.Request, log *slog.Logger, mechanism auth.Mechanism, err error, message string) {
	reason := auth.Reason(err)
	observability.AuthFailuresTotal.WithLabelValues(string(mechanism), reason).Inc()
	log.Warn("authentication failed",
		"mechanism", mechanism,
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error", err,
	)
	respond.Message(w, http.StatusUnauthorized, message)
}

func messageFor(messages map[error]string, err error, fallback string) string {
	for kind, msg := range messages {
		if errors.Is(err, kind) {
			return msg
		}
	}
	return fallback
}

func retryAfterSeconds(d ratelimit.Decision) int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
