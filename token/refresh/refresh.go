// Package refresh manages the long-lived opaque refresh tokens exchanged
// for new access tokens. Clients hold a raw random string; the server only
// ever stores its SHA-256 digest.
package refresh

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no record matches a digest.
var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken is one issued refresh token. Records are never
// physically deleted by this package; revocation is a one-time stamp and
// pruning of expired rows is left to external housekeeping.
type StoredRefreshToken struct {
	ID                  string
	UserID              string
	TokenHash           string // SHA-256 hex digest of the raw token
	ExpiresAt           time.Time
	RevokedAt           *time.Time
	ReplacedByTokenHash *string // digest of the record minted when this one was rotated
	CreatedAt           time.Time
}

// IsExpired reports whether the record's expiry has passed at the reference time.
func (rt *StoredRefreshToken) IsExpired(reference time.Time) bool {
	return !rt.ExpiresAt.After(reference)
}

// IsActive reports whether the record is neither revoked nor expired.
func (rt *StoredRefreshToken) IsActive(reference time.Time) bool {
	return rt.RevokedAt == nil && !rt.IsExpired(reference)
}

// HashToken returns the SHA-256 hex digest under which a raw token is stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Repo manages server-side storage of refresh-token records, keyed by the
// token digest.
type Repo interface {
	// Create persists a new record. ID and CreatedAt may be assigned by the store.
	Create(ctx context.Context, record *StoredRefreshToken) error

	// GetByHash returns the record with the given digest regardless of its
	// active state, or ErrNotFound.
	GetByHash(ctx context.Context, tokenHash string) (*StoredRefreshToken, error)

	// Revoke stamps revoked_at on the record only if it has not been stamped
	// yet, and reports whether this call did the stamping. Two concurrent
	// revocations of the same record see exactly one true.
	Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error)

	// SetReplacedBy records the digest of the successor minted during
	// rotation. Lineage is best effort; failures are non-fatal.
	SetReplacedBy(ctx context.Context, tokenHash, replacedByHash string) error
}
