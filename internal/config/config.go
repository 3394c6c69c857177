// Package config holds the user settings that flags default to.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Renderer      string
	Basemap       string // a name from raster.Basemaps or "none"
	TileURL       string // custom XYZ template, overrides Basemap
	Border        bool
	Color         string
	PixelsPerCell int
	MaxTiles      int
	TileCacheSize int
	UserAgent     string
	Timeout       time.Duration
	CacheDir      string // "none" disables the tile disk cache
}

func Default() *Config {
	return &Config{
		Renderer:      "block",
		Basemap:       "none",
		Border:        true,
		Color:         "auto",
		PixelsPerCell: 10,
		MaxTiles:      64,
		TileCacheSize: 128,
		UserAgent:     "pixelmap",
		Timeout:       10 * time.Second,
		CacheDir:      DefaultCacheDir(),
	}
}

// Dir returns the pixelmap configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "pixelmap")
}

// File returns the path to the config file.
func File() string {
	return filepath.Join(Dir(), "config")
}

// DefaultCacheDir is where downloaded tiles are kept, or "" when the
// platform has no cache directory.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "pixelmap", "tiles")
}

// Load reads the config file at path. A missing file is not an error and
// yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads "key = value" lines over the defaults. Blank lines and lines
// starting with # are skipped, unknown keys ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		if err := cfg.set(strings.ToLower(key), value); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", n, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case "renderer":
		c.Renderer = value
	case "basemap":
		c.Basemap = value
	case "tile_url", "tileurl":
		c.TileURL = value
	case "border":
		c.Border, err = strconv.ParseBool(value)
	case "color":
		c.Color = value
	case "pixels_per_cell", "ppc":
		c.PixelsPerCell, err = positive(value)
	case "max_tiles":
		c.MaxTiles, err = positive(value)
	case "tile_cache_size":
		c.TileCacheSize, err = positive(value)
	case "user_agent":
		c.UserAgent = value
	case "timeout":
		c.Timeout, err = time.ParseDuration(value)
	case "cache_dir":
		if strings.HasPrefix(value, "~") {
			if home, herr := os.UserHomeDir(); herr == nil {
				value = filepath.Join(home, strings.TrimPrefix(value, "~"))
			}
		}
		c.CacheDir = value
	}
	return err
}

func positive(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", v)
	}
	return v, nil
}

// TileCache returns the tile disk cache directory, "" when disabled.
func (c *Config) TileCache() string {
	if c.CacheDir == "none" {
		return ""
	}
	return c.CacheDir
}
