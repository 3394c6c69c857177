package geom

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type reader func(path string, bbox *BBox, logger *log.Logger) (Data, error)

func plain(f func(string) (Data, error)) reader {
	return func(path string, _ *BBox, _ *log.Logger) (Data, error) { return f(path) }
}

func loadWKT(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseWKT(string(b))
}

var readers = map[string]reader{
	".geojson":    plain(LoadGeoJSON),
	".json":       plain(LoadGeoJSON),
	".wkt":        plain(loadWKT),
	".csv":        plain(LoadCSV),
	".kml":        plain(LoadKML),
	".shp":        plain(LoadShapefile),
	".parquet":    LoadGeoParquet,
	".geoparquet": LoadGeoParquet,
}

// Formats lists the supported file extensions.
func Formats() []string {
	out := make([]string, 0, len(readers))
	for ext := range readers {
		out = append(out, ext)
	}
	return out
}

// Load reads every file, keeps what intersects bbox (if given) and merges the
// result into one WGS84 geometry set clipped to bbox. Any unreadable file is
// fatal; an empty result yields ErrNoGeometries.
func Load(paths []string, bbox *BBox, logger *log.Logger) (Data, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if bbox != nil && bbox.CRS() != WGS84 {
		return Data{}, fmt.Errorf("load: bbox must be %s, got %s", WGS84, bbox.CRS())
	}
	all := Data{CRS: WGS84}
	for _, p := range paths {
		read, ok := readers[strings.ToLower(filepath.Ext(p))]
		if !ok {
			return Data{}, &LoadError{Path: p, Err: ErrUnsupportedFormat}
		}
		d, err := read(p, bbox, logger)
		if err != nil {
			return Data{}, &LoadError{Path: p, Err: err}
		}
		n := d.Count()
		if bbox != nil {
			d = NewIndex(d).Query(*bbox)
		}
		logger.Printf("loaded %s: %d geometries, %d in bbox", p, n, d.Count())
		all.Merge(d)
	}
	if bbox != nil {
		all = all.Clip(*bbox)
	}
	if all.Empty() {
		return Data{}, fmt.Errorf("load %d file(s): %w", len(paths), ErrNoGeometries)
	}
	return all, nil
}
