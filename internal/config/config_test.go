package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Generation.MaxAttempts)
	assert.Equal(t, 5, cfg.Cache.Capacity)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
cache:
  capacity: 10
generation:
  backoff_base_ms: 250
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Cache.Capacity)
	assert.Equal(t, 250*time.Millisecond, cfg.Generation.BackoffBase())
	// Untouched sections keep defaults.
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestCredentials(t *testing.T) {
	t.Setenv(CredentialEnvPrefix, "key-one")
	t.Setenv(CredentialEnvPrefix+"_2", "key-two")
	t.Setenv(CredentialEnvPrefix+"_3", "key-three")

	assert.Equal(t, []string{"key-one", "key-two", "key-three"}, Credentials())
}

func TestCredentials_StopsAtGap(t *testing.T) {
	t.Setenv(CredentialEnvPrefix, "key-one")
	t.Setenv(CredentialEnvPrefix+"_2", "")
	t.Setenv(CredentialEnvPrefix+"_4", "unreachable")

	assert.Equal(t, []string{"key-one"}, Credentials())
}
