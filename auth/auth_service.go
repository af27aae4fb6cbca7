// Package auth orchestrates credential verification, access-token signing,
// and refresh-token rotation into the login / me / refresh / register flows.
package auth

import (
	"context"
	"time"

	"github.com/acmeid/accounts-api/token"
	"github.com/acmeid/accounts-api/token/refresh"
	"github.com/acmeid/accounts-api/users"
	"github.com/pkg/errors"
)

// AuthResponse is returned by every flow that authenticates a user. The
// refresh token is the raw opaque string; only its digest is persisted.
type AuthResponse struct {
	AccessToken      string        `json:"access_token"`
	TokenType        string        `json:"token_type"`
	ExpiresIn        int           `json:"expires_in"`
	RefreshToken     string        `json:"refresh_token"`
	RefreshExpiresIn int           `json:"refresh_expires_in"`
	User             users.Profile `json:"user"`
}

// Repos holds the repository dependencies of the Service.
type Repos struct {
	Users users.Repo
}

// Service is the session issuer: it owns the login, current-user, refresh,
// and register flows. All token and credential work is delegated to the
// codec, the refresh manager, and the users package.
type Service struct {
	repos   Repos
	codec   *token.Codec
	refresh *refresh.Manager
	nowFunc func() time.Time
}

// ServiceOption modifies a Service.
type ServiceOption func(*Service)

// WithNowFunc overrides the clock, primarily for testing.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// NewService constructs the session issuer.
func NewService(repos Repos, codec *token.Codec, refreshManager *refresh.Manager, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}
	if refreshManager == nil {
		return nil, errors.New("[NewService] refresh manager is required")
	}

	s := &Service{
		repos:   repos,
		codec:   codec,
		refresh: refreshManager,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login verifies the email/password pair and mints a fresh token pair.
// Unknown email and wrong password both surface as ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Wrap(err, "Service.Login GetByEmail")
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return s.buildAuthResponse(ctx, user)
}

// GetMe returns the sanitized profile for an authenticated user id. No
// tokens are issued.
func (s *Service) GetMe(ctx context.Context, userID string) (users.Profile, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.Profile{}, ErrUserNotFound
		}
		return users.Profile{}, errors.Wrap(err, "Service.GetMe GetByID")
	}
	return user.Profile(), nil
}

// Refresh exchanges a still-active raw refresh token for a brand-new token
// pair, revoking the presented record in the same operation. An unknown
// token yields ErrInvalidRefreshToken; an expired or already-revoked one
// yields ErrRefreshTokenInactive without touching the record. The revoke is
// a conditional update, so of two concurrent calls with the same raw token
// exactly one rotates and the other gets ErrRefreshTokenInactive.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*AuthResponse, error) {
	record, err := s.refresh.Lookup(ctx, rawRefreshToken)
	if err != nil {
		if errors.Is(err, refresh.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, errors.Wrap(err, "Service.Refresh Lookup")
	}
	if !record.IsActive(s.nowFunc()) {
		return nil, ErrRefreshTokenInactive
	}

	// Resolve the owner before mutating anything, so a deleted user never
	// leaves a half-rotated record behind.
	user, err := s.repos.Users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "Service.Refresh GetByID")
	}

	won, err := s.refresh.Revoke(ctx, record)
	if err != nil {
		return nil, errors.Wrap(err, "Service.Refresh Revoke")
	}
	if !won {
		return nil, ErrRefreshTokenInactive
	}

	resp, err := s.buildAuthResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	// Lineage link between the consumed record and its successor. Best
	// effort: the rotation itself has already happened.
	_ = s.refresh.MarkReplaced(ctx, record.TokenHash, resp.RefreshToken)
	return resp, nil
}

// Register creates a user and immediately authenticates it, returning the
// same response shape as Login. A duplicate email yields ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	if err := users.ValidateNewUser(email, password, name); err != nil {
		return nil, err
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "Service.Register HashPassword")
	}

	now := s.nowFunc()
	user := &users.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "Service.Register Create")
	}
	return s.buildAuthResponse(ctx, user)
}

// buildAuthResponse signs an access token and issues a refresh record for
// the user, then assembles the response with the sanitized profile.
func (s *Service) buildAuthResponse(ctx context.Context, user *users.User) (*AuthResponse, error) {
	accessToken, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		return nil, errors.Wrap(err, "Service.buildAuthResponse Issue access token")
	}

	rawRefresh, refreshExpiresAt, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "Service.buildAuthResponse Issue refresh token")
	}

	return &AuthResponse{
		AccessToken:      accessToken,
		TokenType:        "Bearer",
		ExpiresIn:        int(s.codec.AccessTTL().Seconds()),
		RefreshToken:     rawRefresh,
		RefreshExpiresIn: int(refreshExpiresAt.Sub(s.nowFunc()).Seconds()),
		User:             user.Profile(),
	}, nil
}
