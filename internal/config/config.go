package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ClaudeRoot string       `toml:"claude_root"`
	VaultDir   string       `toml:"vault_dir"`
	Search     SearchConfig `toml:"search"`
}

type SearchConfig struct {
	MaxResults  int `toml:"max_results"`
	ContextSize int `toml:"context_size"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeRoot: filepath.Join(home, ".claude", "projects"),
		VaultDir:   filepath.Join(home, "claude-vault"),
		Search: SearchConfig{
			MaxResults:  20,
			ContextSize: 150,
		},
	}

	cfgPath := filepath.Join(home, ".config", "ccvault", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.VaultDir = expandHome(cfg.VaultDir, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
