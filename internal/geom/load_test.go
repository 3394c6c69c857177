package geom

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/parquet-go/parquet-go"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return p
}

const monacoGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [7.42, 43.73]}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[7.41, 43.72], [7.43, 43.74]]}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[7.41, 43.72], [7.43, 43.72], [7.43, 43.74], [7.41, 43.72]]]}},
    {"type": "Feature", "geometry": null}
  ]
}`

func TestParseGeoJSON(t *testing.T) {
	d, err := ParseGeoJSON([]byte(monacoGeoJSON))
	if err != nil {
		t.Fatalf("ParseGeoJSON failed: %v", err)
	}
	if len(d.Points) != 1 || len(d.Lines) != 1 || len(d.Polygons) != 1 {
		t.Errorf("Expected 1 point, 1 line, 1 polygon, got %d/%d/%d", len(d.Points), len(d.Lines), len(d.Polygons))
	}
	empty, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	if err != nil || !empty.Empty() {
		t.Errorf("Expected an empty set without error, got %d geometries (%v)", empty.Count(), err)
	}
}

func TestParseGeoJSONCollection(t *testing.T) {
	src := `{"type":"GeometryCollection","geometries":[
		{"type":"MultiPoint","coordinates":[[0,0],[1,1]]},
		{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[2,2],[3,2],[3,3],[2,2]]]]}
	]}`
	d, err := ParseGeoJSON([]byte(src))
	if err != nil {
		t.Fatalf("ParseGeoJSON failed: %v", err)
	}
	if len(d.Points) != 2 || len(d.Polygons) != 2 {
		t.Errorf("Expected 2 points and 2 polygons, got %d and %d", len(d.Points), len(d.Polygons))
	}
}

func TestParseWKT(t *testing.T) {
	src := "POINT (1 2)\n" +
		"LINESTRING (0 0, 1 1, 2 0)\n" +
		"POLYGON ((0 0, 4 0, 4 4, 0 0), (1 1, 2 1, 2 2, 1 1))\n" +
		"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((2 2, 3 2, 3 3, 2 2)))\n"
	d, err := ParseWKT(src)
	if err != nil {
		t.Fatalf("ParseWKT failed: %v", err)
	}
	if len(d.Points) != 1 || d.Points[0] != (orb.Point{1, 2}) {
		t.Errorf("Expected POINT (1 2), got %v", d.Points)
	}
	if len(d.Lines) != 1 || len(d.Lines[0]) != 3 {
		t.Errorf("Expected one 3-vertex line, got %v", d.Lines)
	}
	if len(d.Polygons) != 3 {
		t.Fatalf("Expected 3 polygons, got %d", len(d.Polygons))
	}
	if len(d.Polygons[0]) != 2 {
		t.Errorf("Expected polygon with a hole, got %d rings", len(d.Polygons[0]))
	}
	for i, poly := range d.Polygons[1:] {
		if len(poly) != 1 || len(poly[0]) != 4 {
			t.Errorf("Multipolygon part %d: expected one 4-vertex ring, got %v", i, poly)
		}
	}
	if _, err := ParseWKT("CIRCLE (1 2)"); err == nil {
		t.Error("Expected error for unsupported WKT type")
	}
}

func TestLoadCSV(t *testing.T) {
	p := writeFile(t, "pts.csv", "name,Latitude,lon\na,43.7,7.4\nb,bad,7.5\nc,43.8,7.6\n")
	d, err := LoadCSV(p)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	want := []orb.Point{{7.4, 43.7}, {7.6, 43.8}}
	if len(d.Points) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(d.Points))
	}
	for i := range want {
		if d.Points[i] != want[i] {
			t.Errorf("Point %d: expected %v, got %v", i, want[i], d.Points[i])
		}
	}
	if _, err := LoadCSV(writeFile(t, "nocols.csv", "a,b\n1,2\n")); err == nil {
		t.Error("Expected error for CSV without lat/lon columns")
	}
}

func TestLoadKML(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <Placemark><Point><coordinates>7.42,43.73,0</coordinates></Point></Placemark>
      <Placemark>
        <MultiGeometry>
          <LineString><coordinates>7.40,43.72 7.41,43.73</coordinates></LineString>
          <LineString><coordinates>7.42,43.72 7.43,43.73</coordinates></LineString>
        </MultiGeometry>
      </Placemark>
    </Folder>
    <Placemark>
      <Polygon>
        <outerBoundaryIs><LinearRing><coordinates>0,0 4,0 4,4 0,0</coordinates></LinearRing></outerBoundaryIs>
        <innerBoundaryIs><LinearRing><coordinates>1,1 2,1 2,2 1,1</coordinates></LinearRing></innerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`
	d, err := LoadKML(writeFile(t, "doc.kml", src))
	if err != nil {
		t.Fatalf("LoadKML failed: %v", err)
	}
	if len(d.Points) != 1 || d.Points[0] != (orb.Point{7.42, 43.73}) {
		t.Errorf("Expected one point at 7.42,43.73, got %v", d.Points)
	}
	if len(d.Lines) != 2 {
		t.Errorf("Expected 2 lines from MultiGeometry, got %d", len(d.Lines))
	}
	if len(d.Polygons) != 1 || len(d.Polygons[0]) != 2 {
		t.Errorf("Expected one polygon with a hole, got %v", d.Polygons)
	}
}

func TestClip(t *testing.T) {
	d := Data{
		Points:   []orb.Point{{0.5, 0.5}, {5, 5}},
		Lines:    []orb.LineString{{{-1, 0.5}, {2, 0.5}}, {{3, 3}, {4, 4}}},
		Polygons: []orb.Polygon{{{{-1, -1}, {2, -1}, {2, 2}, {-1, 2}, {-1, -1}}}},
	}
	b, _ := NewBBox(0, 0, 1, 1, WGS84)
	c := d.Clip(b)
	if len(c.Points) != 1 || c.Points[0] != (orb.Point{0.5, 0.5}) {
		t.Errorf("Expected only the inside point, got %v", c.Points)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("Expected one clipped line, got %d", len(c.Lines))
	}
	if len(c.Polygons) != 1 {
		t.Fatalf("Expected one clipped polygon, got %d", len(c.Polygons))
	}
	minX, minY, maxX, maxY, ok := c.Extent()
	if !ok || minX < 0 || minY < 0 || maxX > 1 || maxY > 1 {
		t.Errorf("Clipped data escapes the box: %f,%f,%f,%f", minX, minY, maxX, maxY)
	}
	if d.Lines[0][0] != (orb.Point{-1, 0.5}) || d.Polygons[0][0][0] != (orb.Point{-1, -1}) {
		t.Error("Clip modified its input")
	}
}

func TestIndexQueryKeepsOrder(t *testing.T) {
	d := Data{Points: []orb.Point{{5, 5}, {0.5, 0.5}, {8, 8}, {0.2, 0.2}}}
	idx := NewIndex(d)
	if idx.Size() != 4 {
		t.Errorf("Expected 4 indexed geometries, got %d", idx.Size())
	}
	b, _ := NewBBox(0, 0, 1, 1, WGS84)
	got := idx.Query(b)
	want := []orb.Point{{0.5, 0.5}, {0.2, 0.2}}
	if len(got.Points) != len(want) {
		t.Fatalf("Expected %d hits, got %d", len(want), len(got.Points))
	}
	for i := range want {
		if got.Points[i] != want[i] {
			t.Errorf("Hit %d: expected %v, got %v", i, want[i], got.Points[i])
		}
	}
}

func TestLoad(t *testing.T) {
	gj := writeFile(t, "monaco.geojson", monacoGeoJSON)
	csv := writeFile(t, "pts.csv", "lat,lon\n43.73,7.42\n48.85,2.35\n")

	d, err := Load([]string{gj, csv}, nil, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Count() != 5 {
		t.Errorf("Expected 5 geometries, got %d", d.Count())
	}

	b, _ := NewBBox(7.40, 43.72, 7.43, 43.74, WGS84)
	d, err = Load([]string{gj, csv}, &b, nil)
	if err != nil {
		t.Fatalf("Load with bbox failed: %v", err)
	}
	if len(d.Points) != 2 {
		t.Errorf("Expected Paris to be filtered out, got points %v", d.Points)
	}
}

func TestLoadEmptyFiles(t *testing.T) {
	gj := writeFile(t, "monaco.geojson", monacoGeoJSON)
	empties := []string{
		writeFile(t, "empty.geojson", `{"type":"FeatureCollection","features":[]}`),
		writeFile(t, "empty.csv", ""),
		writeFile(t, "header.csv", "lat,lon\n"),
		writeFile(t, "empty.wkt", "\n"),
		writeFile(t, "empty.kml", `<kml><Document></Document></kml>`),
	}
	for _, e := range empties {
		d, err := Load([]string{e, gj}, nil, nil)
		if err != nil {
			t.Errorf("Load(%s + data): expected the empty file to contribute nothing, got %v", filepath.Base(e), err)
			continue
		}
		if d.Count() != 3 {
			t.Errorf("Load(%s + data): expected 3 geometries, got %d", filepath.Base(e), d.Count())
		}
	}

	_, err := Load(empties, nil, nil)
	var le *LoadError
	if !errors.Is(err, ErrNoGeometries) || errors.As(err, &le) {
		t.Errorf("Expected plain ErrNoGeometries for only empty files, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	txt := writeFile(t, "notes.txt", "hello")
	_, err := Load([]string{txt}, nil, nil)
	var le *LoadError
	if !errors.As(err, &le) || !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected LoadError wrapping ErrUnsupportedFormat, got %v", err)
	}

	_, err = Load([]string{filepath.Join(t.TempDir(), "missing.geojson")}, nil, nil)
	if !errors.As(err, &le) {
		t.Errorf("Expected LoadError for missing file, got %v", err)
	}

	gj := writeFile(t, "monaco.geojson", monacoGeoJSON)
	far, _ := NewBBox(100, 10, 101, 11, WGS84)
	if _, err := Load([]string{gj}, &far, nil); !errors.Is(err, ErrNoGeometries) {
		t.Errorf("Expected ErrNoGeometries, got %v", err)
	}
}

type coveredRow struct {
	Geometry []byte `parquet:"geometry"`
	BBox     struct {
		XMin float64 `parquet:"xmin"`
		YMin float64 `parquet:"ymin"`
		XMax float64 `parquet:"xmax"`
		YMax float64 `parquet:"ymax"`
	} `parquet:"bbox"`
}

type plainRow struct {
	Geometry []byte `parquet:"geometry"`
}

func pointWKB(t *testing.T, p orb.Point) []byte {
	t.Helper()
	b, err := wkb.Marshal(p)
	if err != nil {
		t.Fatalf("wkb.Marshal failed: %v", err)
	}
	return b
}

func TestLoadGeoParquetCovering(t *testing.T) {
	pts := []orb.Point{{7.42, 43.73}, {10, 10}}
	rows := make([]coveredRow, len(pts))
	for i, p := range pts {
		rows[i].Geometry = pointWKB(t, p)
		rows[i].BBox.XMin, rows[i].BBox.YMin = p[0], p[1]
		rows[i].BBox.XMax, rows[i].BBox.YMax = p[0], p[1]
	}
	path := filepath.Join(t.TempDir(), "pts.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("Failed to write parquet: %v", err)
	}

	d, err := LoadGeoParquet(path, nil, log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("LoadGeoParquet failed: %v", err)
	}
	if len(d.Points) != 2 {
		t.Errorf("Expected 2 points, got %d", len(d.Points))
	}

	b, _ := NewBBox(7.40, 43.72, 7.43, 43.74, WGS84)
	d, err = LoadGeoParquet(path, &b, log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("LoadGeoParquet with bbox failed: %v", err)
	}
	if len(d.Points) != 1 || d.Points[0] != pts[0] {
		t.Errorf("Expected only %v, got %v", pts[0], d.Points)
	}
}

func TestLoadGeoParquetFallback(t *testing.T) {
	rows := []plainRow{
		{Geometry: pointWKB(t, orb.Point{7.42, 43.73})},
		{Geometry: pointWKB(t, orb.Point{10, 10})},
	}
	path := filepath.Join(t.TempDir(), "plain.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("Failed to write parquet: %v", err)
	}
	var logs bytes.Buffer
	b, _ := NewBBox(7.40, 43.72, 7.43, 43.74, WGS84)
	d, err := LoadGeoParquet(path, &b, log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("LoadGeoParquet failed: %v", err)
	}
	if len(d.Points) != 2 {
		t.Errorf("Expected unfiltered read with 2 points, got %d", len(d.Points))
	}
	if !strings.Contains(logs.String(), "reading without bbox filter") {
		t.Errorf("Expected fallback to be logged, got %q", logs.String())
	}

	// the load pipeline clips what the fallback let through
	d, err = Load([]string{path}, &b, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(d.Points) != 1 {
		t.Errorf("Expected 1 point after clipping, got %d", len(d.Points))
	}
}
