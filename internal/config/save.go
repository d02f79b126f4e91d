package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path, as TOML for .toml files and YAML otherwise.
func (c *Config) SaveTo(path string) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
