package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CRS names the coordinate reference system a box or geometry set lives in.
type CRS int

const (
	WGS84       CRS = iota // EPSG:4326, lon/lat degrees
	WebMercator            // EPSG:3857, meters
)

func (c CRS) String() string {
	switch c {
	case WGS84:
		return "EPSG:4326"
	case WebMercator:
		return "EPSG:3857"
	}
	return fmt.Sprintf("CRS(%d)", int(c))
}

// BBox is an axis-aligned box with min < max on both axes.
// Build one with NewBBox; boxes are values and are never modified in place.
type BBox struct {
	minX, minY, maxX, maxY float64
	crs                    CRS
}

func NewBBox(minX, minY, maxX, maxY float64, crs CRS) (BBox, error) {
	for _, v := range [...]float64{minX, minY, maxX, maxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BBox{}, fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidBBox, v)
		}
	}
	if !(minX < maxX) || !(minY < maxY) {
		return BBox{}, fmt.Errorf("%w: (%g, %g, %g, %g)", ErrInvalidBBox, minX, minY, maxX, maxY)
	}
	return BBox{minX: minX, minY: minY, maxX: maxX, maxY: maxY, crs: crs}, nil
}

func (b BBox) MinX() float64 { return b.minX }
func (b BBox) MinY() float64 { return b.minY }
func (b BBox) MaxX() float64 { return b.maxX }
func (b BBox) MaxY() float64 { return b.maxY }
func (b BBox) CRS() CRS      { return b.crs }

func (b BBox) Width() float64  { return b.maxX - b.minX }
func (b BBox) Height() float64 { return b.maxY - b.minY }

// Ratio is width/height.
func (b BBox) Ratio() float64 { return b.Width() / b.Height() }

// Contains reports whether o lies inside b (boundaries included).
func (b BBox) Contains(o BBox) bool {
	return o.minX >= b.minX && o.minY >= b.minY && o.maxX <= b.maxX && o.maxY <= b.maxY
}

// Bound converts the box to an orb.Bound for clipping and intersection tests.
func (b BBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.minX, b.minY}, Max: orb.Point{b.maxX, b.maxY}}
}

func (b BBox) String() string {
	return fmt.Sprintf("%s[%g %g %g %g]", b.crs, b.minX, b.minY, b.maxX, b.maxY)
}

// Data is the geometry container handed from the loaders to the renderer.
type Data struct {
	Points   []orb.Point
	Lines    []orb.LineString
	Polygons []orb.Polygon // first ring outer, following rings holes
	CRS      CRS
}

// Empty reports whether no geometry is present.
func (d Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

// Count returns the number of points, line strings and polygons.
func (d Data) Count() int {
	return len(d.Points) + len(d.Lines) + len(d.Polygons)
}

// Add appends an orb geometry, flattening multi-geometries and collections.
func (d *Data) Add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		d.Points = append(d.Points, g)
	case orb.MultiPoint:
		d.Points = append(d.Points, g...)
	case orb.LineString:
		if len(g) > 0 {
			d.Lines = append(d.Lines, g)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			d.Add(ls)
		}
	case orb.Ring:
		d.Add(orb.Polygon{g})
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) > 0 {
			d.Polygons = append(d.Polygons, g)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			d.Add(p)
		}
	case orb.Collection:
		for _, c := range g {
			d.Add(c)
		}
	case orb.Bound:
		d.Add(g.ToPolygon())
	}
}

// Merge appends all geometries of o to d.
func (d *Data) Merge(o Data) {
	d.Points = append(d.Points, o.Points...)
	d.Lines = append(d.Lines, o.Lines...)
	d.Polygons = append(d.Polygons, o.Polygons...)
}

// Extent returns the tight bounds of all vertices. ok is false for empty data.
// The result may be degenerate (a single point, a straight line).
func (d Data) Extent() (minX, minY, maxX, maxY float64, ok bool) {
	seen := false
	add := func(p orb.Point) {
		if !seen {
			minX, minY, maxX, maxY = p[0], p[1], p[0], p[1]
			seen = true
			return
		}
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	for _, p := range d.Points {
		add(p)
	}
	for _, ls := range d.Lines {
		for _, p := range ls {
			add(p)
		}
	}
	for _, poly := range d.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				add(p)
			}
		}
	}
	return minX, minY, maxX, maxY, seen
}
