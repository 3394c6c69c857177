package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/parquet-go/parquet-go"
)

var errNoCovering = errors.New("geoparquet: no bbox covering column")

// geoMetadata is the subset of the GeoParquet "geo" file metadata we read.
type geoMetadata struct {
	PrimaryColumn string `json:"primary_column"`
	Columns       map[string]struct {
		Encoding string `json:"encoding"`
		Covering *struct {
			BBox struct {
				XMin []string `json:"xmin"`
				YMin []string `json:"ymin"`
				XMax []string `json:"xmax"`
				YMax []string `json:"ymax"`
			} `json:"bbox"`
		} `json:"covering"`
	} `json:"columns"`
}

// geoParquetLayout holds the leaf column indexes used while scanning rows.
type geoParquetLayout struct {
	geometry int
	bbox     [4]int // xmin, ymin, xmax, ymax; -1 when absent
}

// LoadGeoParquet reads a GeoParquet file. With a bbox, rows are first
// filtered through the bbox covering column; if that read fails (no such
// column, unexpected types) the file is read again without the filter and
// the caller's clipping does the work.
func LoadGeoParquet(path string, bbox *BBox, logger *log.Logger) (Data, error) {
	if bbox != nil {
		d, err := readGeoParquet(path, bbox)
		if err == nil {
			return d, nil
		}
		logger.Printf("%s: bbox-aware read failed (%v), reading without bbox filter", path, err)
	}
	return readGeoParquet(path, nil)
}

func readGeoParquet(path string, bbox *BBox) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Data{}, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return Data{}, err
	}
	layout, err := geoParquetColumns(pf, bbox != nil)
	if err != nil {
		return Data{}, err
	}

	d := Data{CRS: WGS84}
	var query orb.Bound
	if bbox != nil {
		query = bbox.Bound()
	}
	buf := make([]parquet.Row, 128)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, rerr := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				g, rowBound, ok, err := decodeGeoParquetRow(row, layout)
				if err != nil {
					rows.Close()
					return Data{}, err
				}
				if !ok {
					continue
				}
				if bbox != nil && !query.Intersects(rowBound) {
					continue
				}
				d.Add(g)
			}
			if rerr == io.EOF {
				break
			}
			if rerr != nil {
				rows.Close()
				return Data{}, rerr
			}
		}
		rows.Close()
	}
	return d, nil
}

// geoParquetColumns resolves the geometry column (and the bbox covering
// columns when withBBox is set) from the "geo" metadata, defaulting to the
// conventional "geometry" and "bbox.{xmin,...}" names.
func geoParquetColumns(pf *parquet.File, withBBox bool) (geoParquetLayout, error) {
	layout := geoParquetLayout{bbox: [4]int{-1, -1, -1, -1}}
	primary := "geometry"
	coverPaths := [4][]string{
		{"bbox", "xmin"}, {"bbox", "ymin"}, {"bbox", "xmax"}, {"bbox", "ymax"},
	}
	if raw, ok := pf.Lookup("geo"); ok {
		var meta geoMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return layout, fmt.Errorf("geoparquet: bad geo metadata: %w", err)
		}
		if meta.PrimaryColumn != "" {
			primary = meta.PrimaryColumn
		}
		if col, ok := meta.Columns[primary]; ok {
			if col.Encoding != "" && !strings.EqualFold(col.Encoding, "WKB") {
				return layout, fmt.Errorf("geoparquet: unsupported geometry encoding %q", col.Encoding)
			}
			if c := col.Covering; c != nil && len(c.BBox.XMin) > 0 {
				coverPaths = [4][]string{c.BBox.XMin, c.BBox.YMin, c.BBox.XMax, c.BBox.YMax}
			}
		}
	}
	leaf, ok := pf.Schema().Lookup(primary)
	if !ok {
		return layout, fmt.Errorf("geoparquet: geometry column %q not found", primary)
	}
	layout.geometry = leaf.ColumnIndex
	if !withBBox {
		return layout, nil
	}
	for i, p := range coverPaths {
		leaf, ok := pf.Schema().Lookup(p...)
		if !ok {
			return layout, errNoCovering
		}
		layout.bbox[i] = leaf.ColumnIndex
	}
	return layout, nil
}

// decodeGeoParquetRow returns the row geometry and its bounds. ok is false for
// null geometries. Bounds come from the covering columns when present.
func decodeGeoParquetRow(row parquet.Row, layout geoParquetLayout) (g orb.Geometry, b orb.Bound, ok bool, err error) {
	var cover [4]float64
	covered := 0
	var raw []byte
	for _, v := range row {
		col := v.Column()
		if col == layout.geometry {
			if v.IsNull() {
				return nil, b, false, nil
			}
			raw = v.ByteArray()
			continue
		}
		for i, bc := range layout.bbox {
			if bc != col || v.IsNull() {
				continue
			}
			switch v.Kind() {
			case parquet.Double:
				cover[i] = v.Double()
			case parquet.Float:
				cover[i] = float64(v.Float())
			default:
				return nil, b, false, fmt.Errorf("geoparquet: bbox column has type %s", v.Kind())
			}
			covered++
		}
	}
	if raw == nil {
		return nil, b, false, nil
	}
	g, err = wkb.Unmarshal(raw)
	if err != nil {
		return nil, b, false, fmt.Errorf("geoparquet: %w", err)
	}
	if covered == 4 {
		b = orb.Bound{Min: orb.Point{cover[0], cover[1]}, Max: orb.Point{cover[2], cover[3]}}
	} else {
		b = g.Bound()
	}
	return g, b, true, nil
}
