package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

// rawTokenBytes is the entropy of a raw refresh token; hex encoding makes
// the client-visible string twice as long.
const rawTokenBytes = 48

// Manager issues, looks up, and revokes refresh tokens over a Repo.
type Manager struct {
	repo     Repo
	validity time.Duration
	nowFunc  func() time.Time
}

// ManagerOption modifies a Manager.
type ManagerOption func(*Manager)

// WithNowFunc overrides the clock, primarily for testing.
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// NewManager creates a refresh token manager. Issued tokens expire
// validity after issuance.
func NewManager(repo Repo, validity time.Duration, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:     repo,
		validity: validity,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Issue mints a new raw refresh token for userID, persists its digest, and
// returns the raw value together with its expiry. The raw token is the only
// copy that ever exists; it cannot be recovered from storage.
func (m *Manager) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	tokenBytes := make([]byte, rawTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, errors.Wrap(err, "Manager.Issue rand.Read")
	}
	raw := hex.EncodeToString(tokenBytes)

	now := m.nowFunc()
	record := &StoredRefreshToken{
		UserID:    userID,
		TokenHash: HashToken(raw),
		ExpiresAt: now.Add(m.validity),
		CreatedAt: now,
	}
	if err := m.repo.Create(ctx, record); err != nil {
		return "", time.Time{}, errors.Wrap(err, "Manager.Issue Create")
	}
	return raw, record.ExpiresAt, nil
}

// Lookup digests the raw token and returns the matching record regardless
// of its active state. Callers decide what an inactive record means.
func (m *Manager) Lookup(ctx context.Context, raw string) (*StoredRefreshToken, error) {
	return m.repo.GetByHash(ctx, HashToken(raw))
}

// Revoke stamps the record as revoked and reports whether this caller won
// the stamp. A false return means another request revoked it first.
func (m *Manager) Revoke(ctx context.Context, record *StoredRefreshToken) (bool, error) {
	return m.repo.Revoke(ctx, record.TokenHash, m.nowFunc())
}

// MarkReplaced links a rotated-out record to its successor's digest.
func (m *Manager) MarkReplaced(ctx context.Context, oldHash, newRaw string) error {
	return m.repo.SetReplacedBy(ctx, oldHash, HashToken(newRaw))
}
