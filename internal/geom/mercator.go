package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// MaxLatitude is the latitude at which Web-Mercator becomes square.
	// Geometry vertices are held within it; boxes are not.
	MaxLatitude = 85.051128779806604
	// MercatorExtent is half the width of the projected world in meters.
	MercatorExtent = 20037508.342789244
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ToMercator projects lon/lat degrees to Web-Mercator meters. The poles have
// no image, so |lat| >= 90 is rejected; everything else projects unclamped.
func ToMercator(lon, lat float64) (x, y float64, err error) {
	if !finite(lon) || !finite(lat) || lat <= -90 || lat >= 90 {
		return 0, 0, &InvalidCoordinateError{X: lon, Y: lat, CRS: WGS84}
	}
	p := project.WGS84.ToMercator(orb.Point{lon, lat})
	// orb caps y at the edge of the square world
	y = math.Log(math.Tan((90+lat)*math.Pi/360)) * orb.EarthRadius
	return p[0], y, nil
}

// ToWGS84 is the inverse of ToMercator.
func ToWGS84(x, y float64) (lon, lat float64, err error) {
	if !finite(x) || !finite(y) {
		return 0, 0, &InvalidCoordinateError{X: x, Y: y, CRS: WebMercator}
	}
	p := project.Mercator.ToWGS84(orb.Point{x, y})
	return p[0], p[1], nil
}

// ToMercator reprojects the two corners of a WGS84 box.
func (b BBox) ToMercator() (BBox, error) {
	if b.crs == WebMercator {
		return b, nil
	}
	left, bottom, err := ToMercator(b.minX, b.minY)
	if err != nil {
		return BBox{}, err
	}
	right, top, err := ToMercator(b.maxX, b.maxY)
	if err != nil {
		return BBox{}, err
	}
	return NewBBox(left, bottom, right, top, WebMercator)
}

// ToWGS84 reprojects all four corners of a projected box and returns their envelope.
func (b BBox) ToWGS84() (BBox, error) {
	if b.crs == WGS84 {
		return b, nil
	}
	corners := [4][2]float64{
		{b.minX, b.minY}, {b.maxX, b.minY},
		{b.maxX, b.maxY}, {b.minX, b.maxY},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		lon, lat, err := ToWGS84(c[0], c[1])
		if err != nil {
			return BBox{}, err
		}
		minX, maxX = math.Min(minX, lon), math.Max(maxX, lon)
		minY, maxY = math.Min(minY, lat), math.Max(maxY, lat)
	}
	return NewBBox(minX, minY, maxX, maxY, WGS84)
}

// ToMercator reprojects every vertex, holding latitudes to ±MaxLatitude so
// polar rings stay drawable. Data already in Web-Mercator is returned as is.
func (d Data) ToMercator() (Data, error) {
	if d.CRS == WebMercator {
		return d, nil
	}
	var err error
	proj := func(p orb.Point) orb.Point {
		if err != nil {
			return p
		}
		lat := p[1]
		if lat >= -90 && lat <= 90 {
			// vertices are drawn no further out than the square world
			lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
		}
		x, y, perr := ToMercator(p[0], lat)
		if perr != nil {
			err = perr
			return p
		}
		return orb.Point{x, y}
	}
	out := Data{CRS: WebMercator}
	out.Points = make([]orb.Point, len(d.Points))
	for i, p := range d.Points {
		out.Points[i] = proj(p)
	}
	out.Lines = make([]orb.LineString, len(d.Lines))
	for i, ls := range d.Lines {
		nl := make(orb.LineString, len(ls))
		for j, p := range ls {
			nl[j] = proj(p)
		}
		out.Lines[i] = nl
	}
	out.Polygons = make([]orb.Polygon, len(d.Polygons))
	for i, poly := range d.Polygons {
		np := make(orb.Polygon, len(poly))
		for j, ring := range poly {
			nr := make(orb.Ring, len(ring))
			for k, p := range ring {
				nr[k] = proj(p)
			}
			np[j] = nr
		}
		out.Polygons[i] = np
	}
	if err != nil {
		return Data{}, err
	}
	return out, nil
}
