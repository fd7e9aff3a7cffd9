package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".claude", "projects"), cfg.ClaudeRoot)
	assert.Equal(t, filepath.Join(home, "claude-vault"), cfg.VaultDir)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 150, cfg.Search.ContextSize)
}

func TestLoadFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "ccvault")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `
claude_root = "~/logs"
vault_dir = "/data/vault"

[search]
max_results = 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs"), cfg.ClaudeRoot)
	assert.Equal(t, "/data/vault", cfg.VaultDir)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	// unset keys keep their defaults
	assert.Equal(t, 150, cfg.Search.ContextSize)
}

func TestLoadRejectsBadToml(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "ccvault")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}
