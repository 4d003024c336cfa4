package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Anthropic", cfg.Summarizer.PrioritySource)
	assert.Equal(t, 50, cfg.Summarizer.BatchSize)
	assert.Equal(t, 1000, cfg.Summarizer.ContentLimit)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Len(t, cfg.Sources, 5)
	assert.Equal(t, KindHTML, cfg.Sources[4].Kind)
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
fetch:
  timeout: 3s
llm:
  model: llama3
sources:
  - name: Example
    endpoint: https://example.com/feed.xml
    kind: feed
  - name: Example News
    endpoint: https://example.com/news
    kind: html
    options:
      longest_span: "false"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("LLM_MODEL", "qwen2.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "false", cfg.Sources[1].Options["longest_span"])
	// 未覆盖的字段保持默认
	assert.Equal(t, 50, cfg.Summarizer.BatchSize)
}

func TestValidateRejectsBadSources(t *testing.T) {
	cfg := Default()
	cfg.Sources = append(cfg.Sources, SourceConfig{Name: "", Endpoint: "x", Kind: "ftp"})
	cfg.Summarizer.BatchSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), `unknown kind "ftp"`)
	assert.Contains(t, err.Error(), "batch_size")
}

func TestTimeframes(t *testing.T) {
	days, ok := TimeframeDays("30d")
	assert.True(t, ok)
	assert.Equal(t, 30, days)

	_, ok = TimeframeDays("invalid")
	assert.False(t, ok)

	assert.Equal(t, "1d", TimeframeKey(1))
	assert.Equal(t, "30d", TimeframeKey(30))
	assert.Equal(t, "1y", TimeframeKey(365))
	assert.Equal(t, []string{"1d", "7d", "30d", "1y"}, TimeframeKeys())
}
