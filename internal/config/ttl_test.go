package config_test

import (
	"testing"
	"time"

	"github.com/acmeid/accounts-api/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseTTLSeconds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   int
		want  int
	}{
		{"bare seconds", "30", config.DefaultAccessTTLSeconds, 30},
		{"seconds suffix", "45s", config.DefaultAccessTTLSeconds, 45},
		{"minutes", "15m", config.DefaultAccessTTLSeconds, 900},
		{"hours", "2h", config.DefaultAccessTTLSeconds, 7200},
		{"days", "7d", config.DefaultRefreshTTLSeconds, 604800},
		{"garbage falls back to access default", "garbage", config.DefaultAccessTTLSeconds, 900},
		{"garbage falls back to refresh default", "garbage", config.DefaultRefreshTTLSeconds, 604800},
		{"empty string", "", config.DefaultAccessTTLSeconds, 900},
		{"unknown suffix", "10w", config.DefaultAccessTTLSeconds, 900},
		{"suffix without value", "m", config.DefaultAccessTTLSeconds, 900},
		{"negative number", "-5", config.DefaultAccessTTLSeconds, 900},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, config.ParseTTLSeconds(tc.input, tc.def))
		})
	}
}

func TestLoadResolvesTTLs(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "30s")
	t.Setenv("REFRESH_TOKEN_TTL", "1d")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.AccessTokenValidity)
	require.Equal(t, 24*time.Hour, cfg.RefreshTokenValidity)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenValidity)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidity)
}
