package raster

import "image/color"

// Style controls how geometries are painted.
type Style struct {
	Background  color.RGBA
	Fill        color.RGBA // polygons, lines and points
	Alpha       float64
	LineWidth   float64 // pixels
	PointRadius float64 // pixels
}

// DefaultStyle paints translucent blue geometry on black.
func DefaultStyle() Style {
	return Style{
		Background:  color.RGBA{0, 0, 0, 0xff},
		Fill:        color.RGBA{0x1f, 0x77, 0xb4, 0xff},
		Alpha:       0.4,
		LineWidth:   2,
		PointRadius: 3,
	}
}

// ScaledStyle adapts the stroke sizes to a pixels-per-cell factor so lines
// stay about one fifth of a cell wide.
func ScaledStyle(ppc int) Style {
	s := DefaultStyle()
	if ppc > 0 && ppc != PixelsPerCell {
		k := float64(ppc) / PixelsPerCell
		s.LineWidth *= k
		s.PointRadius *= k
	}
	return s
}
