package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/config"
)

func TestNewOTPProvider_FixedModeDefaults(t *testing.T) {
	provider := NewOTPProvider(config.OTPConfig{Mode: "fixed"})
	require.Equal(t, "123456", provider.Generate())
	require.Equal(t, "123456", provider.Generate())

	provider = NewOTPProvider(config.OTPConfig{Mode: "fixed", FixedCode: "654321"})
	require.Equal(t, "654321", provider.Generate())
}

func TestNewOTPProvider_RandomModeShape(t *testing.T) {
	provider := NewOTPProvider(config.OTPConfig{Mode: "random"})
	for i := 0; i < 20; i++ {
		code := provider.Generate()
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit in code %q", code)
		}
	}
}

func TestNewShareToken(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		token := newShareToken()
		require.Len(t, token, 64)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}
