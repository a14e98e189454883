package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the base directories of one user's installation
type Paths struct {
	ConfigDir string
	DataDir   string
	CacheDir  string
	StateDir  string
}

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("TCGAIMPORT_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "tcgaimport"),
		DataDir:   getDir("TCGAIMPORT_DATA_HOME", "XDG_DATA_HOME", ".local/share", "tcgaimport"),
		CacheDir:  getDir("TCGAIMPORT_CACHE_HOME", "XDG_CACHE_HOME", ".cache", "tcgaimport"),
		StateDir:  getDir("TCGAIMPORT_STATE_HOME", "XDG_STATE_HOME", ".local/state", "tcgaimport"),
	}
}

// getDir resolves one base directory: the app variable wins, then the
// XDG variable, then the home default.
func getDir(appEnv, xdgEnv, defaultBase, appName string) string {
	if dir := os.Getenv(appEnv); dir != "" {
		return dir
	}
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetCatalogPath returns the path to the artifact catalog database
func GetCatalogPath() string {
	if path := os.Getenv("TCGAIMPORT_CATALOG_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "catalog.db")
}

// GetMirrorPath returns the root of the local archive mirror
func GetMirrorPath() string {
	if path := os.Getenv("TCGAIMPORT_MIRROR"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().CacheDir, "mirror")
}

// GetWorkdirPath returns the base directory for scratch workspaces
func GetWorkdirPath() string {
	if path := os.Getenv("TCGAIMPORT_WORKDIR"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().StateDir, "work")
}

// GetOutputPath returns the default directory for emitted artifacts
func GetOutputPath() string {
	return filepath.Join(GetPaths().DataDir, "out")
}

// EnsureDirectories creates all necessary directories
func EnsureDirectories() error {
	paths := GetPaths()
	dirs := []string{
		paths.ConfigDir,
		paths.DataDir,
		paths.CacheDir,
		paths.StateDir,
		GetMirrorPath(),
		GetWorkdirPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
