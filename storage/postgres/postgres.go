// Package postgres provides the PostgreSQL-backed repositories for users
// and refresh tokens, plus connection setup and embedded migrations.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/acmeid/accounts-api/storage/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Store bundles the database handle and the repositories built on it.
type Store struct {
	db            *sql.DB
	users         *UserRepo
	refreshTokens *RefreshTokenRepo
}

// Open connects to the database, runs migrations, and wires the repositories.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := &Store{
		db:            db,
		users:         NewUserRepo(db),
		refreshTokens: NewRefreshTokenRepo(db),
	}
	if err := s.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// RunMigrations applies the embedded goose migrations.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Conn exposes the underlying handle for lifecycle management.
func (s *Store) Conn() *sql.DB {
	return s.db
}

// Users returns the user repository.
func (s *Store) Users() *UserRepo {
	return s.users
}

// RefreshTokens returns the refresh-token repository.
func (s *Store) RefreshTokens() *RefreshTokenRepo {
	return s.refreshTokens
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
