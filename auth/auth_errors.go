package auth

import "errors"

// Terminal outcomes of the auth flows. The HTTP layer translates them to
// protocol status codes; nothing here is retried.
var (
	// ErrUnauthorized covers both unknown email and wrong password at login.
	// The two causes are deliberately indistinguishable.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrUserNotFound means the user record behind an id (or behind a
	// refresh token) no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRefreshToken means no record matches the presented token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrRefreshTokenInactive means the record exists but is expired or
	// already revoked; no rotation happens in this case.
	ErrRefreshTokenInactive = errors.New("refresh token expired or revoked")

	// ErrEmailTaken is returned by Register for a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
)
