package geom

import (
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// LoadShapefile reads the geometries of an ESRI shapefile. Attribute (.dbf)
// data is not read. Polygon rings are kept together and drawn even-odd, so
// multipart shapes and holes need no ring orientation analysis.
func LoadShapefile(path string) (Data, error) {
	r, err := shp.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer r.Close()
	d := Data{CRS: WGS84}
	toPoints := func(pts []shp.Point) []orb.Point {
		out := make([]orb.Point, len(pts))
		for i, p := range pts {
			out[i] = orb.Point{p.X, p.Y}
		}
		return out
	}
	// parts splits a flat point list by part start offsets
	parts := func(starts []int32, pts []shp.Point) [][]orb.Point {
		var out [][]orb.Point
		for i, s := range starts {
			e := int32(len(pts))
			if i+1 < len(starts) {
				e = starts[i+1]
			}
			if s < 0 || s > e || int(e) > len(pts) {
				continue
			}
			out = append(out, toPoints(pts[s:e]))
		}
		return out
	}
	addLines := func(starts []int32, pts []shp.Point) {
		for _, p := range parts(starts, pts) {
			d.Add(orb.LineString(p))
		}
	}
	addPolygon := func(starts []int32, pts []shp.Point) {
		var poly orb.Polygon
		for _, p := range parts(starts, pts) {
			poly = append(poly, orb.Ring(p))
		}
		d.Add(poly)
	}
	for r.Next() {
		_, shape := r.Shape()
		switch s := shape.(type) {
		case *shp.Point:
			d.Add(orb.Point{s.X, s.Y})
		case *shp.PointZ:
			d.Add(orb.Point{s.X, s.Y})
		case *shp.PointM:
			d.Add(orb.Point{s.X, s.Y})
		case *shp.MultiPoint:
			d.Add(orb.MultiPoint(toPoints(s.Points)))
		case *shp.MultiPointZ:
			d.Add(orb.MultiPoint(toPoints(s.Points)))
		case *shp.MultiPointM:
			d.Add(orb.MultiPoint(toPoints(s.Points)))
		case *shp.PolyLine:
			addLines(s.Parts, s.Points)
		case *shp.PolyLineZ:
			addLines(s.Parts, s.Points)
		case *shp.PolyLineM:
			addLines(s.Parts, s.Points)
		case *shp.Polygon:
			addPolygon(s.Parts, s.Points)
		case *shp.PolygonZ:
			addPolygon(s.Parts, s.Points)
		case *shp.PolygonM:
			addPolygon(s.Parts, s.Points)
		}
	}
	if err := r.Err(); err != nil {
		return Data{}, err
	}
	return d, nil
}
