package handlers

import (
	"fmt"
	"net/http"

	"github.com/hongminglow/auth-examples/internal/auth"
	"github.com/hongminglow/auth-examples/internal/http/respond"
)

// ProtectedHandler greets callers admitted by an authentication guard.
// Routes are registered by the server, which wraps each one in its guards.
type ProtectedHandler struct{}

// NewProtectedHandler creates the greeting handlers.
func NewProtectedHandler() *ProtectedHandler {
	return &ProtectedHandler{}
}

// JWT greets the token subject.
func (h *ProtectedHandler) JWT(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	respond.Message(w, http.StatusOK, fmt.Sprintf("Welcome, User %s!", p.Subject))
}

// Basic greets the Basic-Auth username.
func (h *ProtectedHandler) Basic(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Unauthorized Access")
		return
	}
	respond.Message(w, http.StatusOK, fmt.Sprintf("Welcome, %s!", p.Subject))
}

// APIKey greets a caller holding the shared key.
func (h *ProtectedHandler) APIKey(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		respond.Message(w, http.StatusUnauthorized, "Missing API Key")
		return
	}
	respond.Message(w, http.StatusOK, "Welcome, API user!")
}
