// Package config loads the engine's YAML configuration: buffer pool
// sizing, replacer tuning, hash directory bucket size, and the data
// directory the disk manager writes into.
package config

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Config holds every tunable the engine reads at startup. Zero values
// are never valid for the buffer pool fields, so Load always fills
// in the defaults below before applying an on-disk override file.
type Config struct {
	DataDir            string `yaml:"data_dir"`
	PoolSize           int    `yaml:"pool_size"`
	ReplacerK          int    `yaml:"replacer_k"`
	BucketSize         int    `yaml:"bucket_size"`
	LookupCacheEntries int64  `yaml:"lookup_cache_entries"`
}

func defaults(home string) *Config {
	return &Config{
		DataDir:            filepath.Join(home, "data"),
		PoolSize:           64,
		ReplacerK:          2,
		BucketSize:         4,
		LookupCacheEntries: 10_000,
	}
}

// Load resolves homeOverride (or $CORESTORE_HOME, or ~/.local/share/corestore)
// as the engine's home directory, then overlays config.yaml from that
// directory onto the defaults if present.
func Load(homeOverride, configOverride string) (*Config, error) {
	home := homeOverride
	if home == "" {
		home = os.Getenv("CORESTORE_HOME")
	}
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(userHome, ".local", "share", "corestore")
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, err
	}

	cfg := defaults(home)

	cfgPath := configOverride
	if cfgPath == "" {
		cfgPath = filepath.Join(home, "config.yaml")
	}
	if f, err := os.Open(cfgPath); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	return cfg, nil
}
