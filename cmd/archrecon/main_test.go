package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARCHRECON_CONFIG", "")
	t.Setenv("ARCHRECON_STORE", "disk")
	t.Setenv("ARCHRECON_STORE_PATH", filepath.Join(dir, "architectures.json"))
	t.Setenv("SNAPSHOT_BACKEND", "none")
	t.Setenv("SNAPSHOT_S3_ENDPOINT", "")
	t.Setenv("LLM_PROVIDER", "fake")
	t.Setenv("LLM_FAKE_RESPONSE", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func runJSON(t *testing.T, stdin string, args ...string) map[string]any {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), args, strings.NewReader(stdin), &out))
	var v map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	return v
}

func TestCreateMergeShow(t *testing.T) {
	dir := setupEnv(t)

	created := runJSON(t, `{"name": "Shop", "modules": [{"name": "Auth", "status": "planned"}]}`,
		"create", "-project", "shop", "-author", "alice")
	assert.Equal(t, []any{"name", "modules"}, created["present"])

	yamlPayload := filepath.Join(dir, "update.yaml")
	require.NoError(t, os.WriteFile(yamlPayload, []byte("- name: auth\n  status: completed\n"), 0o644))
	merged := runJSON(t, "", "merge", "-project", "shop", "-section", "modules", "-f", yamlPayload)
	assert.Equal(t, "modules", merged["sectionFieldName"])
	assert.Equal(t, float64(1), merged["itemCount"])

	doc := runJSON(t, "", "show", "-project", "shop")
	modules := doc["modules"].([]any)
	require.Len(t, modules, 1)
	assert.Equal(t, "Auth", modules[0].(map[string]any)["name"])
	assert.Equal(t, "completed", modules[0].(map[string]any)["status"])
	assert.Equal(t, float64(2), doc["version"])

	deleted := runJSON(t, "", "delete", "-project", "shop")
	assert.Equal(t, true, deleted["deleted"])
}

func TestMergeWithoutDocumentNamesStage(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"merge", "-project", "ghost", "-section", "modules"},
		strings.NewReader(`[{"name": "A"}]`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected at received")
}

func TestUnknownCommand(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, out.String(), "usage: archrecon")

	err = run(context.Background(), nil, strings.NewReader(""), &out)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestReadPayloadYAMLStringifiesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yml")
	require.NoError(t, os.WriteFile(path, []byte("- path: /x\n  responses:\n    200: OK\n    404: Missing\n"), 0o644))

	v, err := readPayload(path, strings.NewReader(""))

	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{
			"path":      "/x",
			"responses": map[string]any{"200": "OK", "404": "Missing"},
		},
	}, v)
}
