package refreshrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/acmeid/accounts-api/token/refresh"
	"github.com/google/uuid"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

// FakeRefreshTokenRepo is an in-memory refresh.Repo for tests and local
// development. Revoke has the same exactly-one-winner semantics as the
// SQL store's conditional update.
type FakeRefreshTokenRepo struct {
	records map[string]*refresh.StoredRefreshToken // keyed by token hash
	lock    sync.Mutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		records: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Create(_ context.Context, record *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	copied := *record
	tr.records[copied.TokenHash] = &copied
	return nil
}

func (tr *FakeRefreshTokenRepo) GetByHash(_ context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	record, ok := tr.records[tokenHash]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (tr *FakeRefreshTokenRepo) Revoke(_ context.Context, tokenHash string, at time.Time) (bool, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	record, ok := tr.records[tokenHash]
	if !ok {
		return false, refresh.ErrNotFound
	}
	if record.RevokedAt != nil {
		return false, nil
	}
	stamped := at
	record.RevokedAt = &stamped
	return true, nil
}

func (tr *FakeRefreshTokenRepo) SetReplacedBy(_ context.Context, tokenHash, replacedByHash string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	record, ok := tr.records[tokenHash]
	if !ok {
		return refresh.ErrNotFound
	}
	record.ReplacedByTokenHash = &replacedByHash
	return nil
}
