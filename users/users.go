// Package users holds the user model, password hashing, and the repository
// contract for user persistence.
package users

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Profile is the sanitized projection of a User returned to clients.
// It has no password field under any name; every response path must go
// through this projection rather than serializing User directly.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Profile returns the sanitized projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// MinPasswordLength matches the registration validation of the API.
const MinPasswordLength = 6

// ValidationError marks registration input that failed validation, so the
// HTTP layer can distinguish bad input from internal failures.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateNewUser checks the registration input before hashing.
func ValidateNewUser(email, password, name string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return &ValidationError{Reason: "invalid email address"}
	}
	if len(password) < MinPasswordLength {
		return &ValidationError{Reason: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength)}
	}
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: "name is required"}
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for storage.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a plaintext password against a stored bcrypt
// hash. A mismatch (or malformed hash) yields false, never an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
