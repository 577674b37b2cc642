package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	FileEnv, "APP_ENV", "LOG_LEVEL", "ARCHRECON_STORE", "ARCHRECON_STORE_PATH", "ARCHRECON_PG_DSN",
	"DATABASE_URL", "ARCHRECON_CACHE_ENABLED", "ARCHRECON_CACHE_TTL", "ARCHRECON_CACHE_MAX_ENTRIES",
	"SNAPSHOT_BACKEND", "SNAPSHOT_S3_ENDPOINT", "SNAPSHOT_S3_REGION", "SNAPSHOT_S3_ACCESS_KEY",
	"SNAPSHOT_S3_SECRET_KEY", "MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD", "SNAPSHOT_S3_BUCKET",
	"SNAPSHOT_S3_USE_SSL", "LLM_PROVIDER", "GEMINI_API_KEY", "LLM_MODEL", "LLM_RPS", "LLM_BURST",
	"LLM_MAX_RETRIES", "LLM_FAKE_RESPONSE", "MERGE_MAX_ATTEMPTS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Store, cfg.Store)
	assert.Equal(t, SnapshotNone, cfg.Snapshot.Backend)
	assert.Equal(t, 5, cfg.Merge.MaxAttempts)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "archrecon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
store:
  backend: postgres
  dsn: postgres://file
cache:
  ttl: 30s
  max_entries: 10
snapshot:
  endpoint: minio:9000
llm:
  provider: fake
merge:
  max_attempts: 2
`), 0o644))
	t.Setenv(FileEnv, path)
	t.Setenv("ARCHRECON_PG_DSN", "postgres://env")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("ARCHRECON_CACHE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://env", cfg.Store.DSN)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Cache.MaxEntries)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, SnapshotS3, cfg.Snapshot.Backend)
	assert.Equal(t, "minio", cfg.Snapshot.AccessKey)
	assert.Equal(t, "archrecon-snapshots", cfg.Snapshot.Bucket)
	assert.Equal(t, ProviderFake, cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Merge.MaxAttempts)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MERGE_MAX_ATTEMPTS", "many")
	_, err := Load()
	assert.ErrorContains(t, err, "MERGE_MAX_ATTEMPTS")

	clearEnv(t)
	t.Setenv("ARCHRECON_STORE", "redis")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown backend")

	clearEnv(t)
	t.Setenv("ARCHRECON_STORE", "postgres")
	_, err = Load()
	assert.ErrorContains(t, err, "dsn")

	clearEnv(t)
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
}
