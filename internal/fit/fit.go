// Package fit expands bounding boxes so their width/height ratio matches the
// character-cell ratio of the terminal the map is drawn into.
package fit

import (
	"errors"
	"fmt"
	"math"

	"pixelmap/internal/geom"
)

var (
	ErrInvalidRatio = errors.New("aspect ratio must be a positive finite number")
	ErrWrongCRS     = errors.New("bounding box is in the wrong coordinate system")
)

// Limits gives read/write access to a plot extent.
type Limits interface {
	Limits() geom.BBox
	SetLimits(geom.BBox)
}

// Expand grows b symmetrically along one axis until width/height == ratio.
// The other axis is unchanged, so the result always contains b.
func Expand(b geom.BBox, ratio float64) (geom.BBox, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return geom.BBox{}, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	left, bottom, right, top := b.MinX(), b.MinY(), b.MaxX(), b.MaxY()
	width, height := b.Width(), b.Height()
	current := width / height
	if current < ratio {
		pad := (ratio/current*width - width) / 2
		left, right = left-pad, right+pad
	} else {
		pad := (current/ratio*height - height) / 2
		bottom, top = bottom-pad, top+pad
	}
	return geom.NewBBox(left, bottom, right, top, b.CRS())
}

// BBox fits a geographic box in Web-Mercator space. It returns the fitted box
// both reprojected back to WGS84 (for clipping) and in Web-Mercator (for use
// as plot limits without another round trip).
func BBox(box geom.BBox, ratio float64) (geo, proj geom.BBox, err error) {
	if box.CRS() != geom.WGS84 {
		return geom.BBox{}, geom.BBox{}, fmt.Errorf("%w: want %s, got %s", ErrWrongCRS, geom.WGS84, box.CRS())
	}
	merc, err := box.ToMercator()
	if err != nil {
		return geom.BBox{}, geom.BBox{}, err
	}
	proj, err = Expand(merc, ratio)
	if err != nil {
		return geom.BBox{}, geom.BBox{}, err
	}
	geo, err = proj.ToWGS84()
	if err != nil {
		return geom.BBox{}, geom.BBox{}, err
	}
	return geo, proj, nil
}

// Axes fits the projected limits of l in place and returns them.
func Axes(l Limits, ratio float64) (geom.BBox, error) {
	cur := l.Limits()
	if cur.CRS() != geom.WebMercator {
		return geom.BBox{}, fmt.Errorf("%w: want %s, got %s", ErrWrongCRS, geom.WebMercator, cur.CRS())
	}
	fitted, err := Expand(cur, ratio)
	if err != nil {
		return geom.BBox{}, err
	}
	l.SetLimits(fitted)
	return fitted, nil
}
