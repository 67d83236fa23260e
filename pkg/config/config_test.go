package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// A path that does not exist yields the defaults.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scene.CellSize != 8 {
		t.Errorf("Scene.CellSize = %v, want 8", cfg.Scene.CellSize)
	}
	if cfg.Scene.ItemsPerRow != 3 {
		t.Errorf("Scene.ItemsPerRow = %v, want 3", cfg.Scene.ItemsPerRow)
	}
	if cfg.Camera.DefaultView != "perspective" {
		t.Errorf("Camera.DefaultView = %q, want perspective", cfg.Camera.DefaultView)
	}
	if cfg.Packing.Timeout() != 30*time.Second {
		t.Errorf("Packing.Timeout() = %v, want 30s", cfg.Packing.Timeout())
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[scene]
cell_size = 10.0
items_per_row = 4

[camera]
default_view = "top"

[packing]
service_url = "https://packing.internal:9000"

[serve]
addr = ":9999"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scene.CellSize != 10 {
		t.Errorf("Scene.CellSize = %v, want 10", cfg.Scene.CellSize)
	}
	if cfg.Scene.ItemsPerRow != 4 {
		t.Errorf("Scene.ItemsPerRow = %v, want 4", cfg.Scene.ItemsPerRow)
	}
	if cfg.Camera.DefaultView != "top" {
		t.Errorf("Camera.DefaultView = %q, want top", cfg.Camera.DefaultView)
	}
	if cfg.Packing.ServiceURL != "https://packing.internal:9000" {
		t.Errorf("Packing.ServiceURL = %q", cfg.Packing.ServiceURL)
	}
	if cfg.Serve.Addr != ":9999" {
		t.Errorf("Serve.Addr = %q, want :9999", cfg.Serve.Addr)
	}

	// Sections the file omits keep their defaults.
	if cfg.Camera.FOV != 50 {
		t.Errorf("Camera.FOV = %v, want 50", cfg.Camera.FOV)
	}
	if cfg.Render.Format != "svg" {
		t.Errorf("Render.Format = %q, want svg", cfg.Render.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[packing]
service_url = "http://from-file:8000"
`)
	t.Setenv(EnvServiceURL, "http://from-env:8000")
	t.Setenv(EnvCacheBack, "none")
	t.Setenv(EnvTimeout, "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Packing.ServiceURL != "http://from-env:8000" {
		t.Errorf("Packing.ServiceURL = %q, want the env value", cfg.Packing.ServiceURL)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("Cache.Backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Packing.Timeout() != 5*time.Second {
		t.Errorf("Packing.Timeout() = %v, want 5s", cfg.Packing.Timeout())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `scene = [`},
		{"bad view mode", "[camera]\ndefault_view = \"diagonal\""},
		{"bad cell size", "[scene]\ncell_size = -1.0"},
		{"bad scheme", "[packing]\nservice_url = \"ftp://x\""},
		{"bad format", "[render]\nformat = \"png\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
