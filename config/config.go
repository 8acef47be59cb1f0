// Package config handles the optional YAML configuration file shared by the
// server and the CLI.
package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration file structure. Zero values mean
// "use the built-in default"; command line flags override everything.
type Config struct {
	Listen    string `yaml:"listen,omitempty"`
	Port      int    `yaml:"port,omitempty"`
	Precision int    `yaml:"precision,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrapf(err, "config: parse %s", path)
	}

	return &cfg, nil
}
