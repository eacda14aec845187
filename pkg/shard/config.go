package shard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Defaults for a gitshard run.
const (
	DefaultSizeLimit  = "100M"
	DefaultStorePath  = "split_files_info.json"
	DefaultIgnoreFile = ".gitignore"

	// ConfigFileName is looked up in the working root.
	ConfigFileName = ".gitshard.yaml"
)

// Config holds the settings for a gitshard run. StorePath and IgnoreFile
// are relative to Root, as are all paths recorded in the tracker store.
type Config struct {
	Root       string `yaml:"-" ignored:"true"` // working root, set from the command line
	SizeLimit  string `yaml:"sizeLimit" envconfig:"SIZE_LIMIT"`
	StorePath  string `yaml:"store" envconfig:"STORE"`
	IgnoreFile string `yaml:"ignoreFile" envconfig:"IGNORE_FILE"`
	Workers    int    `yaml:"workers" envconfig:"WORKERS"`
	Verbose    bool   `yaml:"-" ignored:"true"`
}

// DefaultConfig returns the built-in defaults for the given working root.
func DefaultConfig(root string) Config {
	return Config{
		Root:       root,
		SizeLimit:  DefaultSizeLimit,
		StorePath:  DefaultStorePath,
		IgnoreFile: DefaultIgnoreFile,
	}
}

// LoadConfig resolves the configuration for root by layering the optional
// .gitshard.yaml config file and then GITSHARD_* environment variables
// over the defaults. Flag overrides are applied by the caller.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig(root)

	data, err := os.ReadFile(filepath.Join(root, ConfigFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	if err := envconfig.Process("gitshard", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment configuration: %w", err)
	}

	return cfg, nil
}

// LimitBytes parses the configured size limit.
func (c Config) LimitBytes() (int64, error) {
	limit, err := ParseSize(c.SizeLimit)
	if err != nil {
		return 0, fmt.Errorf("invalid size limit %q: %w", c.SizeLimit, err)
	}
	return limit, nil
}
