package server

import (
	"context"
	"fmt"

	"github.com/acmeid/accounts-api/internal/config"
	"github.com/acmeid/accounts-api/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// InitialiseSystem seeds the default admin user from configuration. Seeding
// is skipped with a warning when the credentials are not configured and is
// a no-op when the user already exists.
func InitialiseSystem(ctx context.Context, cfg *config.Config, userRepo users.Repo, log zerolog.Logger) error {
	if cfg.DefaultUserEmail == "" || cfg.DefaultUserPassword == "" {
		log.Warn().Msg("DEFAULT_USER_EMAIL or DEFAULT_USER_PASSWORD not configured, skipping default user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, cfg.DefaultUserEmail)
	if err == nil {
		log.Info().Str("email", cfg.DefaultUserEmail).Msg("default user already exists")
		return nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("[InitialiseSystem] failed to look up default user: %w", err)
	}

	hash, err := users.HashPassword(cfg.DefaultUserPassword)
	if err != nil {
		return fmt.Errorf("[InitialiseSystem] failed to hash default user password: %w", err)
	}

	user := &users.User{
		Email:        cfg.DefaultUserEmail,
		Name:         "Admin User",
		PasswordHash: hash,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("[InitialiseSystem] failed to create default user: %w", err)
	}

	log.Info().Str("email", cfg.DefaultUserEmail).Msg("default user created")
	return nil
}
