package relay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "config.yaml")
	document := `
baseURL: /var/relay
server:
  addr: ":9090"
delivery:
  timeoutMs: 2500
`
	require.NoError(t, os.WriteFile(location, []byte(document), 0o644))

	cfg, err := LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, "/var/relay", cfg.BaseURL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2500, cfg.Delivery.TimeoutMs)
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	location := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(location, []byte("baseURL: /var/relay\n"), 0o644))

	cfg, err := LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5000, cfg.Delivery.TimeoutMs)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Delivery.TimeoutMs = 0
	assert.Error(t, cfg.Validate())
}
