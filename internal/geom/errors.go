package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBBox indicates a box violating min < max or holding non-finite values
	ErrInvalidBBox = errors.New("invalid bounding box")
	// ErrNoGeometries indicates the loaded (and clipped) geometry set is empty
	ErrNoGeometries = errors.New("no geometries found")
	// ErrUnsupportedFormat indicates a file extension without a reader
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// BBoxSyntaxError indicates a --bbox value that is not 4 comma separated floats
type BBoxSyntaxError struct {
	Value string
	Err   error
}

func (e *BBoxSyntaxError) Error() string {
	return fmt.Sprintf("cannot parse provided bounding box %q: "+
		"valid value must contain 4 floating point numbers separated by commas", e.Value)
}

func (e *BBoxSyntaxError) Unwrap() error { return e.Err }

// InvalidCoordinateError indicates a coordinate outside the projection domain
type InvalidCoordinateError struct {
	X, Y float64
	CRS  CRS
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate: x=%f y=%f in %s", e.X, e.Y, e.CRS)
}

// LoadError indicates a file that could not be read into geometries
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
