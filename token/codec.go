// Package token signs and verifies the short-lived access tokens issued to
// authenticated users.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidToken is the single failure outcome of Verify. Bad signature,
// expiry, and malformed input are deliberately indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the typed claim set carried by every access token. The subject
// registered claim holds the user ID; consumers read identity from here
// rather than probing loose map keys.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Codec issues and verifies HS256-signed bearer access tokens.
type Codec struct {
	secret    []byte
	accessTTL time.Duration
	nowFunc   func() time.Time
}

// CodecOption modifies a Codec.
type CodecOption func(*Codec)

// WithNowFunc overrides the clock, primarily for testing.
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// NewCodec creates a Codec signing with the given secret. Tokens expire
// accessTTL after issuance.
func NewCodec(secret []byte, accessTTL time.Duration, options ...CodecOption) *Codec {
	c := &Codec{
		secret:    secret,
		accessTTL: accessTTL,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// AccessTTL reports the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

// Issue signs an access token for the given user.
func (c *Codec) Issue(userID, email string) (string, error) {
	now := c.nowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
			ID:        uuid.New().String(),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "Codec.Issue SignedString")
	}
	return signed, nil
}

// Verify parses and validates a signed access token. Any failure is
// reported as ErrInvalidToken.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.nowFunc))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
