package geom

import (
	"encoding/json"
	"io"
	"os"

	"github.com/paulmach/orb"
)

// LoadGeoJSON reads a GeoJSON file (Feature, FeatureCollection or a bare
// geometry) and returns its points, lines and polygons.
func LoadGeoJSON(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON decodes GeoJSON bytes. Unknown or malformed members are skipped.
func ParseGeoJSON(data []byte) (Data, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Data{}, err
	}
	d := Data{CRS: WGS84}
	parsePoint := func(v any) (pt orb.Point, ok bool) {
		if a, ok := v.([]any); ok && len(a) >= 2 {
			lon, lok := a[0].(float64)
			lat, aok := a[1].(float64)
			if lok && aok {
				return orb.Point{lon, lat}, true
			}
		}
		return orb.Point{}, false
	}
	parseArrayPoints := func(v any) (pts []orb.Point, ok bool) {
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		for _, el := range arr {
			if pt, ok := parsePoint(el); ok {
				pts = append(pts, pt)
			}
		}
		return pts, true
	}
	parsePolygon := func(v any) (poly orb.Polygon, ok bool) {
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		for _, ring := range arr {
			if pts, ok := parseArrayPoints(ring); ok {
				poly = append(poly, orb.Ring(pts))
			}
		}
		return poly, true
	}
	var walkGeom func(g map[string]any)
	walkGeom = func(g map[string]any) {
		gt, _ := g["type"].(string)
		coords := g["coordinates"]
		switch gt {
		case "Point":
			if pt, ok := parsePoint(coords); ok {
				d.Add(pt)
			}
		case "MultiPoint":
			if pts, ok := parseArrayPoints(coords); ok {
				d.Add(orb.MultiPoint(pts))
			}
		case "LineString":
			if pts, ok := parseArrayPoints(coords); ok {
				d.Add(orb.LineString(pts))
			}
		case "MultiLineString":
			if arr, ok := coords.([]any); ok {
				for _, el := range arr {
					if pts, ok := parseArrayPoints(el); ok {
						d.Add(orb.LineString(pts))
					}
				}
			}
		case "Polygon":
			if poly, ok := parsePolygon(coords); ok {
				d.Add(poly)
			}
		case "MultiPolygon":
			if arr, ok := coords.([]any); ok {
				for _, el := range arr {
					if poly, ok := parsePolygon(el); ok {
						d.Add(poly)
					}
				}
			}
		case "GeometryCollection":
			if gs, ok := g["geometries"].([]any); ok {
				for _, sub := range gs {
					if sm, ok := sub.(map[string]any); ok {
						walkGeom(sm)
					}
				}
			}
		}
	}
	t, _ := raw["type"].(string)
	switch t {
	case "Feature":
		if g, ok := raw["geometry"].(map[string]any); ok {
			walkGeom(g)
		}
	case "FeatureCollection":
		if fs, ok := raw["features"].([]any); ok {
			for _, f := range fs {
				if fm, ok := f.(map[string]any); ok {
					if g, ok := fm["geometry"].(map[string]any); ok {
						walkGeom(g)
					}
				}
			}
		}
	default:
		if len(raw) > 0 {
			walkGeom(raw)
		}
	}
	return d, nil
}
