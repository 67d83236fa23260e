// Package config loads packview configuration from a TOML file with
// environment overrides. All fields have working defaults: a missing file
// is not an error, and an empty file yields the default configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/binpack3d/packview/pkg/errors"
	"github.com/binpack3d/packview/pkg/scene/camera"
)

// Config is the complete application configuration.
type Config struct {
	Scene   SceneConfig   `toml:"scene"`
	Camera  CameraConfig  `toml:"camera"`
	Packing PackingConfig `toml:"packing"`
	Cache   CacheConfig   `toml:"cache"`
	Render  RenderConfig  `toml:"render"`
	Serve   ServeConfig   `toml:"serve"`
}

// SceneConfig tunes holding-area layout.
type SceneConfig struct {
	// CellSize is the holding-area grid cell edge length.
	CellSize float32 `toml:"cell_size"`

	// ItemsPerRow is the holding-area grid column count.
	ItemsPerRow int `toml:"items_per_row"`
}

// CameraConfig tunes camera framing.
type CameraConfig struct {
	// FOV is the perspective field of view in degrees.
	FOV float32 `toml:"fov"`

	// DistanceMultiple scales axis-view camera distance.
	DistanceMultiple float32 `toml:"distance_multiple"`

	// DefaultView is the view mode the viewer starts in.
	DefaultView string `toml:"default_view"`
}

// PackingConfig points at the packing service.
type PackingConfig struct {
	// ServiceURL is the base URL of the packing service.
	ServiceURL string `toml:"service_url"`

	// TimeoutSeconds bounds each packing request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the packing request timeout as a duration.
func (p PackingConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// CacheConfig selects and tunes the response cache.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file cache directory. Empty means ~/.cache/packview.
	Dir string `toml:"dir"`

	// RedisURL is the redis connection URL for the redis backend.
	RedisURL string `toml:"redis_url"`
}

// RenderConfig sets render-command defaults.
type RenderConfig struct {
	// Format is the default output format (svg, json, dot, txt).
	Format string `toml:"format"`

	// Width is the SVG pixel width.
	Width float64 `toml:"width"`
}

// ServeConfig sets serve-command defaults.
type ServeConfig struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scene: SceneConfig{
			CellSize:    8,
			ItemsPerRow: 3,
		},
		Camera: CameraConfig{
			FOV:              50,
			DistanceMultiple: 2.5,
			DefaultView:      "perspective",
		},
		Packing: PackingConfig{
			ServiceURL:     "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Backend:  "file",
			RedisURL: "redis://localhost:6379/0",
		},
		Render: RenderConfig{
			Format: "svg",
			Width:  800,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.config/packview/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "packview", "config.toml")
}

// Load reads path, overlaying it on the defaults and then applying
// environment overrides. A missing file is not an error; an empty path
// falls back to [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Environment variable overrides, applied after the file.
const (
	EnvServiceURL = "PACKVIEW_SERVICE_URL"
	EnvCacheDir   = "PACKVIEW_CACHE_DIR"
	EnvCacheBack  = "PACKVIEW_CACHE_BACKEND"
	EnvRedisURL   = "PACKVIEW_REDIS_URL"
	EnvServeAddr  = "PACKVIEW_ADDR"
	EnvTimeout    = "PACKVIEW_TIMEOUT_SECONDS"
)

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServiceURL); v != "" {
		c.Packing.ServiceURL = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(EnvCacheBack); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvServeAddr); v != "" {
		c.Serve.Addr = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Packing.TimeoutSeconds = secs
		}
	}
}

// Validate checks the configuration for values no command could accept.
func (c *Config) Validate() error {
	if c.Scene.CellSize <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scene.cell_size must be positive")
	}
	if c.Scene.ItemsPerRow <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scene.items_per_row must be positive")
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return errors.New(errors.ErrCodeInvalidInput, "camera.fov must be in (0, 180)")
	}
	if _, err := camera.ParseViewMode(c.Camera.DefaultView); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidViewMode, err, "camera.default_view")
	}
	if err := errors.ValidateURL(c.Packing.ServiceURL); err != nil {
		return err
	}
	if c.Packing.TimeoutSeconds <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "packing.timeout_seconds must be positive")
	}
	if err := errors.ValidateFormat(c.Render.Format); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be file, redis, or none")
	}
	return nil
}
