package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TileSource returns XYZ (slippy map) tiles in Web-Mercator.
type TileSource interface {
	Tile(ctx context.Context, z, x, y int) (image.Image, error)
}

// Basemaps maps provider names to XYZ URL templates.
var Basemaps = map[string]string{
	"dark":     "https://a.basemaps.cartocdn.com/dark_nolabels/{z}/{x}/{y}.png",
	"positron": "https://a.basemaps.cartocdn.com/light_nolabels/{z}/{x}/{y}.png",
	"voyager":  "https://a.basemaps.cartocdn.com/rastertiles/voyager_nolabels/{z}/{x}/{y}.png",
}

// BasemapNames returns "none" followed by the sorted provider names.
func BasemapNames() []string {
	names := make([]string, 0, len(Basemaps))
	for n := range Basemaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return append([]string{"none"}, names...)
}

var ErrTileStatus = errors.New("unexpected tile response")

// HTTPTiles fetches tiles from an XYZ URL template, keeping decoded tiles in
// an in-memory LRU and raw responses in an optional on-disk cache.
type HTTPTiles struct {
	URL       string
	UserAgent string
	CacheDir  string // empty disables the disk cache
	Client    *http.Client
	Log       *log.Logger

	mem *lru.Cache[string, image.Image]
}

// NewHTTPTiles creates a tile fetcher for the URL template (with {z}, {x}
// and {y} placeholders). cacheSize is the number of decoded tiles kept in
// memory.
func NewHTTPTiles(url string, cacheSize int, timeout time.Duration) (*HTTPTiles, error) {
	if !strings.Contains(url, "{z}") || !strings.Contains(url, "{x}") || !strings.Contains(url, "{y}") {
		return nil, fmt.Errorf("tile url %q must contain {z}, {x} and {y}", url)
	}
	if cacheSize <= 0 {
		cacheSize = 128
	}
	mem, err := lru.New[string, image.Image](cacheSize)
	if err != nil {
		return nil, err
	}
	return &HTTPTiles{
		URL:       url,
		UserAgent: "pixelmap",
		Client:    &http.Client{Timeout: timeout},
		Log:       log.New(io.Discard, "", 0),
		mem:       mem,
	}, nil
}

func (t *HTTPTiles) tileURL(z, x, y int) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(t.URL)
}

func (t *HTTPTiles) cachePath(z, x, y int) string {
	// the URL template keeps providers apart
	key := strings.NewReplacer("://", "_", "/", "_", "{", "", "}", "").Replace(t.URL)
	return filepath.Join(t.CacheDir, key, strconv.Itoa(z), strconv.Itoa(x), strconv.Itoa(y))
}

// Tile implements TileSource.
func (t *HTTPTiles) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	if img, ok := t.mem.Get(key); ok {
		return img, nil
	}
	var raw []byte
	if t.CacheDir != "" {
		if b, err := os.ReadFile(t.cachePath(z, x, y)); err == nil {
			raw = b
		}
	}
	fromDisk := raw != nil
	if !fromDisk {
		b, err := t.fetch(ctx, t.tileURL(z, x, y))
		if err != nil {
			return nil, err
		}
		raw = b
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", key, err)
	}
	if !fromDisk && t.CacheDir != "" {
		p := t.cachePath(z, x, y)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err == nil {
			if err := os.WriteFile(p, raw, 0o644); err != nil {
				t.Log.Printf("tile cache write %s: %v", p, err)
			}
		}
	}
	t.mem.Add(key, img)
	return img, nil
}

func (t *HTTPTiles) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.UserAgent)
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrTileStatus, url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
