package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nishad/tcgaimport/internal/paths"
	"gopkg.in/yaml.v3"
)

// Config represents the tcgaimport configuration
type Config struct {
	WorkDirectory   string        `yaml:"work_directory"`   // Base for scratch workspaces
	OutputDirectory string        `yaml:"output_directory"` // Where artifacts are written
	Mirror          MirrorConfig  `yaml:"mirror"`
	Build           BuildConfig   `yaml:"build"`
	Catalog         CatalogConfig `yaml:"catalog"`
	Batch           BatchConfig   `yaml:"batch"`
	Server          ServerConfig  `yaml:"server"`
	Logging         LoggingConfig `yaml:"logging"`
}

// MirrorConfig describes the local archive mirror
type MirrorConfig struct {
	Path     string `yaml:"path"`
	Download bool   `yaml:"download"` // Fetch missing archives over HTTP
}

// BuildConfig contains per-run transformation switches
type BuildConfig struct {
	Sanitize       bool     `yaml:"sanitize"`        // Drop race/ethnicity from clinical tables
	RemoveControls bool     `yaml:"remove_controls"` // Drop control samples
	UUIDTable      string   `yaml:"uuid_table"`      // rawKey<TAB>barcode file
	ClinicalTypes  []string `yaml:"clinical_types"`  // Restrict clinical dataSubTypes
}

// CatalogConfig contains artifact catalog settings
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BatchConfig contains batch driver settings
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// ServerConfig contains catalog API settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		WorkDirectory:   paths.GetWorkdirPath(),
		OutputDirectory: paths.GetOutputPath(),
		Mirror: MirrorConfig{
			Path:     paths.GetMirrorPath(),
			Download: false,
		},
		Catalog: CatalogConfig{
			Enabled: true,
			Path:    paths.GetCatalogPath(),
		},
		Batch: BatchConfig{
			Workers: 5,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	// Return defaults if file doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.WorkDirectory = expandPath(config.WorkDirectory)
	config.OutputDirectory = expandPath(config.OutputDirectory)
	config.Mirror.Path = expandPath(config.Mirror.Path)
	config.Catalog.Path = expandPath(config.Catalog.Path)
	config.Build.UUIDTable = expandPath(config.Build.UUIDTable)

	if config.Batch.Workers < 1 {
		config.Batch.Workers = 1
	}

	return config, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if path := os.Getenv("TCGAIMPORT_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat("tcgaimport.yaml"); err == nil {
		return "tcgaimport.yaml"
	}

	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// EnsureDirectories creates the directories a build writes into
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.WorkDirectory,
		c.OutputDirectory,
		c.Mirror.Path,
	}
	if c.Catalog.Enabled {
		dirs = append(dirs, filepath.Dir(c.Catalog.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}
