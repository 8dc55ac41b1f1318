package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORGACCESS_FGA_BACKEND", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8085", cfg.ListenAddr)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.FGA.Timeout)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
listen_addr: ":9090"
store: memory
fga:
  backend: openfga
  api_url: "http://fga.internal:8080"
  store_id: "01GXSA8YR785C4FYS3C0RTG7B1"
  timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "http://fga.internal:8080", cfg.FGA.APIURL)
	assert.Equal(t, "01GXSA8YR785C4FYS3C0RTG7B1", cfg.FGA.StoreID)
	assert.Equal(t, 2*time.Second, cfg.FGA.Timeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ORGACCESS_FGA_BACKEND", "memory")
	t.Setenv("ORGACCESS_LISTEN_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
}

func TestLoadRejectsBadStore(t *testing.T) {
	t.Setenv("ORGACCESS_FGA_BACKEND", "memory")
	t.Setenv("ORGACCESS_STORE", "cassandra")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRequiresStoreIDForOpenFGA(t *testing.T) {
	t.Setenv("ORGACCESS_FGA_BACKEND", "openfga")
	t.Setenv("ORGACCESS_FGA_STORE_ID", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("ORGACCESS_FGA_BACKEND", "memory")
	t.Setenv("ORGACCESS_STORE", "postgres")
	t.Setenv("ORGACCESS_DATABASE_URL", "")

	_, err := Load("")
	assert.Error(t, err)
}
