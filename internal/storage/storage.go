package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/auth-examples/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken indicates another user already registered the email address.
var ErrEmailTaken = errors.New("email already registered")

// ErrUsernameTaken indicates another user already registered the username.
var ErrUsernameTaken = errors.New("username already taken")

// UserStore captures persistence operations needed by handlers.
//
// CreateUser must be atomic with respect to the uniqueness of email and
// username: of two concurrent registrations with the same email, exactly
// one succeeds and the other gets ErrEmailTaken.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Backend is a UserStore that owns database resources.
type Backend interface {
	UserStore
	Close()
}
