package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// Clip returns the part of d inside b. Lines crossing the box are cut into
// pieces, polygons are cut at the box edges. d itself is left untouched.
func (d Data) Clip(b BBox) Data {
	bound := b.Bound()
	out := Data{CRS: d.CRS}
	for _, p := range d.Points {
		if bound.Contains(p) {
			out.Points = append(out.Points, p)
		}
	}
	for _, ls := range d.Lines {
		if !bound.Intersects(ls.Bound()) {
			continue
		}
		// clip rewrites its input in place
		if g := clip.Geometry(bound, orb.Clone(ls)); g != nil {
			out.Add(g)
		}
	}
	for _, poly := range d.Polygons {
		if !bound.Intersects(poly.Bound()) {
			continue
		}
		if g := clip.Geometry(bound, orb.Clone(poly)); g != nil {
			out.Add(g)
		}
	}
	return out
}
