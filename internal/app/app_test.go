package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archrecon/internal/config"
	"archrecon/internal/service/architecture"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "architectures.json")
	cfg.Snapshot.Backend = config.SnapshotMemory
	cfg.LLM.Provider = config.ProviderFake
	cfg.LLM.RPS = 0
	cfg.LLM.FakeResponse = "```json\n{\"backend\": {\"api\": \"Handlers\"}}\n```\n[[ARCHITECTURE_UPDATE:structure]]"
	return &cfg
}

func TestNewWiresDiskStoreSnapshotsAndGenerator(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Service.Create(ctx, "shop", "alice", map[string]any{"name": "Shop"})
	require.NoError(t, err)
	res, err := a.Service.GenerateAndMerge(ctx, architecture.GenerateRequest{ProjectRef: "shop"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"backend": map[string]any{"api": "Handlers"}}, res.Document.DirectoryStructure)

	versions, err := a.Service.Snapshots(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, versions)

	reopened, err := New(ctx, cfg)
	require.NoError(t, err)
	defer reopened.Close()
	doc, ok, err := reopened.Service.Get(ctx, "shop")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), doc.Version)
}

func TestNewWithoutGeminiKeyDisablesGeneration(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Store.Backend = config.StoreMemory
	cfg.Cache.Enabled = false
	cfg.Snapshot.Backend = config.SnapshotNone
	cfg.LLM.Provider = config.ProviderGemini
	cfg.LLM.APIKey = ""

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Service.GenerateAndMerge(ctx, architecture.GenerateRequest{ProjectRef: "shop"})
	assert.ErrorIs(t, err, architecture.ErrNoGenerator)
	_, err = a.Service.Snapshots(ctx, "shop")
	assert.ErrorIs(t, err, architecture.ErrSnapshotsDisabled)
}

func TestNewRejectsIncompleteS3Config(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshot.Backend = config.SnapshotS3
	cfg.Snapshot.Endpoint = ""
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
