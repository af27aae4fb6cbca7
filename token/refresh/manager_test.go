package refresh_test

import (
	"context"
	"testing"
	"time"

	"github.com/acmeid/accounts-api/token/refresh"
	refreshrepofake "github.com/acmeid/accounts-api/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestIssueStoresOnlyDigest(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	manager := refresh.NewManager(repo, 7*24*time.Hour)

	raw, expiresAt, err := manager.Issue(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, raw, 96) // 48 random bytes, hex encoded
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)

	// The raw value must not be retrievable by itself, only by digest.
	_, err = repo.GetByHash(context.Background(), raw)
	require.ErrorIs(t, err, refresh.ErrNotFound)

	record, err := repo.GetByHash(context.Background(), refresh.HashToken(raw))
	require.NoError(t, err)
	require.Equal(t, "user-1", record.UserID)
	require.Nil(t, record.RevokedAt)
	require.Nil(t, record.ReplacedByTokenHash)
}

func TestLookupReturnsInactiveRecords(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	past := time.Now().Add(-time.Hour)
	manager := refresh.NewManager(repo, time.Minute, refresh.WithNowFunc(func() time.Time { return past }))

	raw, _, err := manager.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	record, err := manager.Lookup(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, record.IsExpired(time.Now()))
	require.False(t, record.IsActive(time.Now()))
}

func TestLookupUnknownToken(t *testing.T) {
	manager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Minute)

	_, err := manager.Lookup(context.Background(), "no-such-token")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestRevokeWinsOnlyOnce(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	manager := refresh.NewManager(repo, time.Hour)

	raw, _, err := manager.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	record, err := manager.Lookup(context.Background(), raw)
	require.NoError(t, err)

	won, err := manager.Revoke(context.Background(), record)
	require.NoError(t, err)
	require.True(t, won)

	won, err = manager.Revoke(context.Background(), record)
	require.NoError(t, err)
	require.False(t, won)

	stamped, err := manager.Lookup(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, stamped.RevokedAt)
	require.False(t, stamped.IsActive(time.Now()))
}

func TestMarkReplacedLinksLineage(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	manager := refresh.NewManager(repo, time.Hour)

	oldRaw, _, err := manager.Issue(context.Background(), "user-1")
	require.NoError(t, err)
	newRaw, _, err := manager.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	oldRecord, err := manager.Lookup(context.Background(), oldRaw)
	require.NoError(t, err)
	require.NoError(t, manager.MarkReplaced(context.Background(), oldRecord.TokenHash, newRaw))

	linked, err := manager.Lookup(context.Background(), oldRaw)
	require.NoError(t, err)
	require.NotNil(t, linked.ReplacedByTokenHash)
	require.Equal(t, refresh.HashToken(newRaw), *linked.ReplacedByTokenHash)
}
