// Package config resolves where the contacts file and snapshot live and which
// keys the listing hides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither flags, environment nor the config file say otherwise.
const (
	DefaultContactsFile = "~/contacts.txt"
	DefaultDBFile       = "~/.contacts/contacts.db"
	DefaultConfigFile   = "~/.config/contacts/config.yaml"

	EnvContactsFile = "CONTACTS_FILE"
	EnvDBFile       = "CONTACTS_DB"
)

// DefaultHiddenKeys are left out of the attribute listing. Org and Role are
// already shown next to the name.
var DefaultHiddenKeys = []string{"Nickname", "Role", "Org"}

// Config holds resolved settings.
type Config struct {
	File       string   `yaml:"file"`
	DB         string   `yaml:"db"`
	HiddenKeys []string `yaml:"hidden_keys"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		File:       DefaultContactsFile,
		DB:         DefaultDBFile,
		HiddenKeys: append([]string(nil), DefaultHiddenKeys...),
	}
}

// Load reads the YAML config at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", expanded, err)
	default:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", expanded, err)
		}
		cfg.merge(fileCfg)
	}

	if v := os.Getenv(EnvContactsFile); v != "" {
		cfg.File = v
	}
	if v := os.Getenv(EnvDBFile); v != "" {
		cfg.DB = v
	}

	return cfg, nil
}

func (c *Config) merge(other Config) {
	if other.File != "" {
		c.File = other.File
	}
	if other.DB != "" {
		c.DB = other.DB
	}
	if other.HiddenKeys != nil {
		c.HiddenKeys = other.HiddenKeys
	}
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
