package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/custody_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.KeywrapProvider)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 10, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/custody_test")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.RateLimitEnabled)
}

func TestValidateKeywrapProviders(t *testing.T) {
	base := func() *Config {
		return &Config{PostgresDSN: "postgres://localhost/custody_test", KeywrapProvider: "none"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "none_needs_nothing",
			mutate: func(c *Config) {},
		},
		{
			name:    "local_requires_master_key",
			mutate:  func(c *Config) { c.KeywrapProvider = "local" },
			wantErr: true,
		},
		{
			name: "local_with_master_key",
			mutate: func(c *Config) {
				c.KeywrapProvider = "local"
				c.LocalMasterKeyHex = "ab"
			},
		},
		{
			name:    "aws_kms_requires_key_and_region",
			mutate:  func(c *Config) { c.KeywrapProvider = "aws-kms" },
			wantErr: true,
		},
		{
			name: "vault_requires_full_config",
			mutate: func(c *Config) {
				c.KeywrapProvider = "vault"
				c.VaultAddress = "https://vault.internal:8200"
			},
			wantErr: true,
		},
		{
			name:    "unknown_provider",
			mutate:  func(c *Config) { c.KeywrapProvider = "hsm" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
