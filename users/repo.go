package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no user matches.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Repo manages user persistence. Lookups return ErrNotFound when no row
// matches; Create returns ErrDuplicateEmail on a unique-email violation.
type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
