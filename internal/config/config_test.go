package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.RPC)
	assert.Equal(t, float64(95), cfg.Jupiter.MinTokenScore)
	assert.Empty(t, cfg.Jupiter.APIKey)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
solana:
  rpc: https://rpc.example.com
jupiter:
  api_key: secret
  min_token_score: 80
server:
  port: 9090
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example.com", cfg.Solana.RPC)
	assert.Equal(t, "secret", cfg.Jupiter.APIKey)
	assert.Equal(t, float64(80), cfg.Jupiter.MinTokenScore)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Unset fields keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30, cfg.Solana.Timeout)
}
