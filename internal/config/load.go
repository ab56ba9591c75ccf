package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Overrides are command-line settings applied over the config file.
// Zero values leave the loaded setting unchanged.
type Overrides struct {
	Debug     bool
	LogFile   string
	Workers   int
	BlockSize int
	Hermite   bool
	OutputDir string
}

// Load loads configuration with priority: defaults < file < overrides.
// An empty path searches the standard locations.
func Load(path string, overrides Overrides) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", configPath)
		}
	}

	// Apply command-line overrides (highest priority)
	overrides.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// apply applies overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.Workers > 0 {
		cfg.Worker.Count = o.Workers
	}
	if o.BlockSize > 0 {
		cfg.Scene.BlockSize = o.BlockSize
	}
	if o.Hermite {
		cfg.Mesh.DisplayHermite = true
	}
	if o.OutputDir != "" {
		cfg.Output.Dir = o.OutputDir
	}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./voxmesh.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "voxmesh")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "voxmesh")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "voxmesh")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "voxmesh")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// A file that lists shapes replaces the default scene shapes.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}
	cfg.Scene.Shapes = nil
	defaults := Default().Scene.Shapes
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	if cfg.Scene.Shapes == nil {
		cfg.Scene.Shapes = defaults
	}
	return nil
}
