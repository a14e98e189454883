package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetPaths(t *testing.T) {
	p := GetPaths()

	for name, dir := range map[string]string{
		"ConfigDir": p.ConfigDir,
		"DataDir":   p.DataDir,
		"CacheDir":  p.CacheDir,
		"StateDir":  p.StateDir,
	} {
		if dir == "" {
			t.Errorf("%s should not be empty", name)
		}
	}

	if !strings.Contains(p.ConfigDir, "tcgaimport") {
		t.Errorf("ConfigDir should contain 'tcgaimport', got %q", p.ConfigDir)
	}
}

func TestGetPathsWithAppEnv(t *testing.T) {
	t.Setenv("TCGAIMPORT_CONFIG_HOME", "/custom/config")
	t.Setenv("TCGAIMPORT_DATA_HOME", "/custom/data")
	t.Setenv("TCGAIMPORT_CACHE_HOME", "/custom/cache")
	t.Setenv("TCGAIMPORT_STATE_HOME", "/custom/state")

	p := GetPaths()

	if p.ConfigDir != "/custom/config" {
		t.Errorf("expected ConfigDir '/custom/config', got %q", p.ConfigDir)
	}
	if p.DataDir != "/custom/data" {
		t.Errorf("expected DataDir '/custom/data', got %q", p.DataDir)
	}
	if p.CacheDir != "/custom/cache" {
		t.Errorf("expected CacheDir '/custom/cache', got %q", p.CacheDir)
	}
	if p.StateDir != "/custom/state" {
		t.Errorf("expected StateDir '/custom/state', got %q", p.StateDir)
	}
}

func TestGetPathsWithXDGEnv(t *testing.T) {
	t.Setenv("TCGAIMPORT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	p := GetPaths()
	if p.ConfigDir != filepath.Join("/xdg/config", "tcgaimport") {
		t.Errorf("expected XDG config dir, got %q", p.ConfigDir)
	}
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("TCGAIMPORT_DATA_HOME", "/d")
	t.Setenv("TCGAIMPORT_CACHE_HOME", "/c")
	t.Setenv("TCGAIMPORT_STATE_HOME", "/s")
	t.Setenv("TCGAIMPORT_CATALOG_PATH", "")
	t.Setenv("TCGAIMPORT_MIRROR", "")
	t.Setenv("TCGAIMPORT_WORKDIR", "")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"catalog", GetCatalogPath(), "/d/catalog.db"},
		{"mirror", GetMirrorPath(), "/c/mirror"},
		{"workdir", GetWorkdirPath(), "/s/work"},
		{"output", GetOutputPath(), "/d/out"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	t.Setenv("TCGAIMPORT_MIRROR", "/mnt/tcga")
	if got := GetMirrorPath(); got != "/mnt/tcga" {
		t.Errorf("expected mirror override, got %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TCGAIMPORT_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("TCGAIMPORT_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("TCGAIMPORT_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("TCGAIMPORT_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("TCGAIMPORT_MIRROR", "")
	t.Setenv("TCGAIMPORT_WORKDIR", "")

	if err := EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{"config", "data", "cache/mirror", "state/work"} {
		if _, err := os.Stat(filepath.Join(base, dir)); err != nil {
			t.Errorf("expected %s to exist: %v", dir, err)
		}
	}
}
