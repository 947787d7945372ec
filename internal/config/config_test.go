package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "gemini-3-pro-preview", cfg.ChatModel)
	assert.Equal(t, "gemini-3-pro-image-preview", cfg.ImageModel)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	require.Len(t, cfg.Documents, 3)
	assert.Equal(t, "facility", cfg.Documents[0].ID)
	assert.Equal(t, "Facility Specification (Hebrew)", cfg.Documents[0].Name)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vizstudio.yaml")
	content := `
http_port: 9000
static_dir: /srv/public
log_level: debug
documents:
  - id: facility
    name: Facility
    path: /tmp/facility.md
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("REMOTE_TIMEOUT_MS", "250")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, "/srv/public", cfg.StaticDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.RemoteTimeout)
	require.Len(t, cfg.Documents, 1)
	assert.Equal(t, "/tmp/facility.md", cfg.Documents[0].Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("VIZ_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("VIZ_TEST_INT", 7))
}

func TestLoadMockMode(t *testing.T) {
	t.Setenv("VIZ_MODE", gemini.ModeMock)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, gemini.ModeMock, cfg.Mode)
	assert.IsType(t, &gemini.MockClient{}, gemini.NewClient(cfg.Mode, cfg.GeminiBaseURL, zap.NewNop()))
}
