package geom

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Index is an R-tree over the geometries of a Data set, used to drop
// everything that cannot intersect a query box before clipping.
type Index struct {
	rtree *rtreego.Rtree
	items []orb.Geometry
	crs   CRS
}

// indexedGeometry wraps a geometry for R-tree storage.
type indexedGeometry struct {
	seq    int
	bounds orb.Bound
}

// Bounds implements rtreego.Spatial.
func (g *indexedGeometry) Bounds() rtreego.Rect {
	return boundRect(g.bounds)
}

// boundRect converts an orb bound to an R-tree rect. The tree requires
// non-zero lengths, so points and axis-parallel lines get a small epsilon.
func boundRect(b orb.Bound) rtreego.Rect {
	const epsilon = 0.0001
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w < epsilon {
		w = epsilon
	}
	if h < epsilon {
		h = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	return rect
}

// NewIndex builds an index over every point, line and polygon of d.
func NewIndex(d Data) *Index {
	idx := &Index{rtree: rtreego.NewTree(2, 25, 50), crs: d.CRS}
	add := func(g orb.Geometry) {
		idx.rtree.Insert(&indexedGeometry{seq: len(idx.items), bounds: g.Bound()})
		idx.items = append(idx.items, g)
	}
	for _, p := range d.Points {
		add(p)
	}
	for _, ls := range d.Lines {
		add(ls)
	}
	for _, poly := range d.Polygons {
		add(poly)
	}
	return idx
}

// Size returns the number of indexed geometries.
func (idx *Index) Size() int { return len(idx.items) }

// Query returns the geometries whose bounds intersect b, in their original order.
func (idx *Index) Query(b BBox) Data {
	hits := idx.rtree.SearchIntersect(boundRect(b.Bound()))
	seqs := make([]int, 0, len(hits))
	for _, s := range hits {
		seqs = append(seqs, s.(*indexedGeometry).seq)
	}
	sort.Ints(seqs)
	out := Data{CRS: idx.crs}
	for _, i := range seqs {
		out.Add(idx.items[i])
	}
	return out
}
