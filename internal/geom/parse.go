package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBBox parses "minx,miny,maxx,maxy" into a WGS84 box.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, &BBoxSyntaxError{Value: s, Err: fmt.Errorf("got %d values", len(parts))}
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, &BBoxSyntaxError{Value: s, Err: err}
		}
		v[i] = f
	}
	b, err := NewBBox(v[0], v[1], v[2], v[3], WGS84)
	if err != nil {
		return BBox{}, &BBoxSyntaxError{Value: s, Err: err}
	}
	return b, nil
}
