package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCommandWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "cli.db"))
	out := filepath.Join(dir, "site", "data.json")

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "none.yaml"), "--log-level", "error", "export", "--out", out})
	require.NoError(t, Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Empty(t, doc["articles"])
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestTrendsCommandWithEmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "cli.db"))

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "none.yaml"), "--log-level", "error", "trends", "--days", "30"})
	assert.NoError(t, Execute())
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: x\n    kind: ftp\n"), 0o644))

	rootCmd.SetArgs([]string{"--config", path, "export"})
	assert.Error(t, Execute())
}
