package geom

import (
	"errors"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ParseWKT parses a subset of WKT into Data.
// Supported: POINT, MULTIPOINT, LINESTRING, MULTILINESTRING, POLYGON, MULTIPOLYGON.
// Several geometries may be given, one per line.
func ParseWKT(wkt string) (Data, error) {
	d := Data{CRS: WGS84}
	for _, line := range strings.Split(wkt, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		g, err := parseWKTGeometry(s)
		if err != nil {
			return Data{}, err
		}
		d.Add(g)
	}
	return d, nil
}

func parseWKTGeometry(s string) (orb.Geometry, error) {
	up := strings.ToUpper(s)
	i := strings.Index(s, "(")
	j := strings.LastIndex(s, ")")
	if i < 0 || j <= i {
		return nil, errors.New("wkt: invalid " + strings.Fields(up)[0])
	}
	body := s[i+1 : j]
	parseTuples := func(block string) []orb.Point {
		var out []orb.Point
		for _, tup := range strings.Split(block, ",") {
			tup = strings.Trim(strings.TrimSpace(tup), "()")
			parts := strings.Fields(tup)
			if len(parts) < 2 {
				continue
			}
			x, e1 := strconv.ParseFloat(parts[0], 64)
			y, e2 := strconv.ParseFloat(parts[1], 64)
			if e1 != nil || e2 != nil {
				continue
			}
			out = append(out, orb.Point{x, y})
		}
		return out
	}
	parsePolygon := func(block string) orb.Polygon {
		var poly orb.Polygon
		for _, ring := range splitTopLevel(block) {
			if pts := parseTuples(ring); len(pts) > 0 {
				poly = append(poly, orb.Ring(pts))
			}
		}
		return poly
	}
	// MULTI* prefixes must be tested before their singular forms
	switch {
	case strings.HasPrefix(up, "MULTIPOINT"):
		return orb.MultiPoint(parseTuples(body)), nil
	case strings.HasPrefix(up, "POINT"):
		pts := parseTuples(body)
		if len(pts) == 0 {
			return nil, errors.New("wkt: invalid POINT")
		}
		return pts[0], nil
	case strings.HasPrefix(up, "MULTILINESTRING"):
		var mls orb.MultiLineString
		for _, part := range splitTopLevel(body) {
			if ls := parseTuples(part); len(ls) > 0 {
				mls = append(mls, orb.LineString(ls))
			}
		}
		return mls, nil
	case strings.HasPrefix(up, "LINESTRING"):
		return orb.LineString(parseTuples(body)), nil
	case strings.HasPrefix(up, "MULTIPOLYGON"):
		var mp orb.MultiPolygon
		for _, part := range splitTopLevel(body) {
			if poly := parsePolygon(part); len(poly) > 0 {
				mp = append(mp, poly)
			}
		}
		return mp, nil
	case strings.HasPrefix(up, "POLYGON"):
		return parsePolygon(body), nil
	}
	return nil, errors.New("unsupported wkt type")
}

// splitTopLevel splits "(a, b), (c)" at commas outside parentheses and strips
// one level of enclosing parentheses from every part.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	emit := func(part string) {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "(") && strings.HasSuffix(part, ")") {
			part = part[1 : len(part)-1]
		}
		if part != "" {
			out = append(out, part)
		}
	}
	for i, ch := range s {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				emit(s[start:i])
				start = i + 1
			}
		}
	}
	emit(s[start:])
	return out
}
