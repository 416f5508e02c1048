package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/auth-examples/internal/http/respond"
	"github.com/hongminglow/auth-examples/internal/models"
	"github.com/hongminglow/auth-examples/internal/models/dto"
	"github.com/hongminglow/auth-examples/internal/storage"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	store  storage.UserStore
	tokens TokenIssuer
	cost   int
	log    *slog.Logger
	// dummy is compared against when no stored hash exists so that unknown
	// and known emails take about the same time to reject.
	dummy []byte
}

// NewAuthHandler constructs the handler. cost is the bcrypt cost used for
// new password hashes; zero selects bcrypt.DefaultCost.
func NewAuthHandler(store storage.UserStore, tokens TokenIssuer, cost int, log *slog.Logger) *AuthHandler {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// A nil dummy (invalid cost) still rejects every comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("unused-login-password"), cost)
	return &AuthHandler{store: store, tokens: tokens, cost: cost, log: log, dummy: dummy}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		respond.Message(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	ctx := r.Context()
	// Report a reused email ahead of a reused username, whichever unique
	// constraint the database happens to check first.
	taken, err := h.emailTaken(ctx, email)
	if err != nil {
		h.log.Error("register: lookup email failed", "error", err)
		respond.InternalError(w)
		return
	}
	if taken {
		h.rejectEmail(w, email)
		return
	}

	user := models.User{Username: username, Email: email}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
		if err != nil {
			h.log.Error("register: hash password failed", "error", err)
			respond.InternalError(w)
			return
		}
		user.PasswordHash = string(hash)
	}

	created, err := h.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrUsernameTaken) {
		// A concurrent registration may have claimed both fields.
		if taken, lookupErr := h.emailTaken(ctx, email); lookupErr == nil && taken {
			err = storage.ErrEmailTaken
		}
	}
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrEmailTaken):
		h.rejectEmail(w, email)
		return
	case errors.Is(err, storage.ErrUsernameTaken):
		h.log.Info("register rejected: username taken", "username", username)
		respond.Message(w, http.StatusBadRequest, "Username already taken")
		return
	default:
		h.log.Error("register: create user failed", "error", err)
		respond.InternalError(w)
		return
	}

	h.log.Info("user registered", "user_id", created.ID, "username", created.Username)
	respond.Message(w, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	email := strings.TrimSpace(req.Email)

	user, err := h.store.FindByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.log.Error("login: lookup user failed", "error", err)
		respond.InternalError(w)
		return
	}
	if !h.passwordMatches(user, err == nil, req.Password) {
		h.log.Warn("login failed", "email", email)
		respond.Message(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		h.log.Error("login: sign token failed", "user_id", user.ID, "error", err)
		respond.InternalError(w)
		return
	}
	h.log.Info("user logged in", "user_id", user.ID)
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}

// passwordMatches always runs one bcrypt comparison, against the dummy hash
// when the user is unknown or has no password.
func (h *AuthHandler) passwordMatches(user models.User, found bool, password string) bool {
	hash := h.dummy
	if found && user.HasPassword() {
		hash = []byte(user.PasswordHash)
	}
	ok := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	return ok && found && user.HasPassword()
}

func (h *AuthHandler) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := h.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (h *AuthHandler) rejectEmail(w http.ResponseWriter, email string) {
	h.log.Info("register rejected: email taken", "email", email)
	respond.Message(w, http.StatusBadRequest, "Email already registered")
}
