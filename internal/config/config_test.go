package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATA_DIR", "STATIC_DIR", "ADMIN_USER", "ADMIN_PASSWORD", "SLACK_BOT_TOKEN", "SLACK_TEST_USER_ID", "SLACK_BASE_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigWithInfo_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.False(t, info.Found)
	assert.False(t, info.PortSpecified)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWithInfo_File(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 8080

[data]
data_dir = "/srv/dash"
demo_fallback = false

[files]
sales = ["vendas.csv"]

[sectors]
blocked = []
`), 0644))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.True(t, info.Found)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/srv/dash", cfg.Data.DataDir)
	assert.False(t, cfg.Data.DemoFallback)
	assert.Equal(t, []string{"vendas.csv"}, cfg.Files.Sales)
	assert.Equal(t, DefaultConfig().Files.Registry, cfg.Files.Registry, "unset keys keep defaults")
	assert.Empty(t, cfg.Sectors.Blocked)
	assert.Equal(t, "/srv/dash", ResolveDataDir(cfg))
}

func TestLoadConfigWithInfo_InvalidToml(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))
	_, _, err := LoadConfigWithInfo(path)
	assert.Error(t, err)
}

func TestLoadConfigWithInfo_EnvOverrides(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SLACK_BOT_TOKEN=xoxb-from-file\nSLACK_TEST_USER_ID=U42\n"), 0644))
	t.Setenv("PORT", "9999")
	t.Setenv("SLACK_BASE_URL", "https://dash.example.com/")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	// godotenv never overrides a variable that is already set
	os.Unsetenv("SLACK_BOT_TOKEN")
	os.Unsetenv("SLACK_TEST_USER_ID")

	cfg, info, err := LoadConfigWithInfo(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://dash.example.com", cfg.Slack.BaseURL)
	assert.Equal(t, "s3cret", cfg.Admin.Password)
	assert.Equal(t, "xoxb-from-file", cfg.Slack.BotToken)
	assert.Equal(t, "U42", cfg.Slack.TestUserID)
	assert.Contains(t, info.EnvFiles, filepath.Join(dir, ".env"))

	os.Unsetenv("SLACK_BOT_TOKEN")
	os.Unsetenv("SLACK_TEST_USER_ID")
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.DataDir, dir)
	for _, sub := range []string{"uploads", "backups"} {
		st, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	}
	assert.Equal(t, filepath.Join(dir, "backups", "x.csv"), GetDataPath(cfg, "backups", "x.csv"))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Server.Port = 4000
	require.NoError(t, SaveConfig(cfg, path))

	got, _, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, got.Server.Port)
}
