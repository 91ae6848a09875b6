// Package config loads the optional ~/.clickhouse/config.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures user-tunable settings. Every field has a working default;
// the file only needs to exist when a value is overridden.
type Config struct {
	// DownloadBase is the release artifact base URL. The platform-specific
	// binary lives at {DownloadBase}/{tag}/clickhouse-{os}-{arch}.
	DownloadBase string `yaml:"download_base"`

	// ReleasesURL is the releases listing endpoint queried for remote
	// catalogs.
	ReleasesURL string `yaml:"releases_url"`

	// DownloadTimeoutSec bounds a single binary download.
	DownloadTimeoutSec int `yaml:"download_timeout_s"`

	// CatalogTTLSec controls how long a cached remote catalog stays fresh.
	CatalogTTLSec int `yaml:"catalog_ttl_s"`

	// RemoteListLimit caps how many releases `list --remote` prints.
	RemoteListLimit int `yaml:"remote_list_limit"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DownloadBase:       "https://github.com/ClickHouse/ClickHouse/releases/download",
		ReleasesURL:        "https://api.github.com/repos/ClickHouse/ClickHouse/releases",
		DownloadTimeoutSec: 300,
		CatalogTTLSec:      3600,
		RemoteListLimit:    20,
	}
}

// Load reads the config file at path, layering it over Default. A missing
// file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DownloadBase == "" {
		return errors.New("download_base must not be empty")
	}
	if c.ReleasesURL == "" {
		return errors.New("releases_url must not be empty")
	}
	if c.DownloadTimeoutSec <= 0 {
		return errors.New("download_timeout_s must be positive")
	}
	if c.RemoteListLimit <= 0 {
		return errors.New("remote_list_limit must be positive")
	}
	return nil
}

// DownloadTimeout returns the download timeout as a duration.
func (c Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSec) * time.Second
}

// CatalogTTL returns the catalog cache freshness window.
func (c Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSec) * time.Second
}
