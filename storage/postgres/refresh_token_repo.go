package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/acmeid/accounts-api/token/refresh"
	"github.com/google/uuid"
)

var _ refresh.Repo = (*RefreshTokenRepo)(nil)

// RefreshTokenRepo implements refresh.Repo over PostgreSQL. Revocation is a
// conditional update so concurrent rotations of the same token have exactly
// one winner.
type RefreshTokenRepo struct {
	db *sql.DB
}

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) Create(ctx context.Context, record *refresh.StoredRefreshToken) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.TokenHash, record.ExpiresAt, record.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by_token_hash, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	record := &refresh.StoredRefreshToken{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&record.ID, &record.UserID, &record.TokenHash, &record.ExpiresAt,
		&record.RevokedAt, &record.ReplacedByTokenHash, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, refresh.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, tokenHash, at)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *RefreshTokenRepo) SetReplacedBy(ctx context.Context, tokenHash, replacedByHash string) error {
	query := `
		UPDATE refresh_tokens
		SET replaced_by_token_hash = $2
		WHERE token_hash = $1
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, replacedByHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
