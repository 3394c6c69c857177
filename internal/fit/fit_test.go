package fit

import (
	"errors"
	"math"
	"testing"

	"pixelmap/internal/geom"
)

func mustBox(t *testing.T, minX, minY, maxX, maxY float64, crs geom.CRS) geom.BBox {
	t.Helper()
	b, err := geom.NewBBox(minX, minY, maxX, maxY, crs)
	if err != nil {
		t.Fatalf("NewBBox failed: %v", err)
	}
	return b
}

func TestExpandRatioInvariant(t *testing.T) {
	boxes := [][4]float64{
		{0, 0, 1, 1},
		{-10, -2, 10, 2},
		{100, 200, 101, 260},
		{-2e7, -1e6, 2e7, 1e6},
	}
	ratios := []float64{0.25, 0.5, 1, 2, 3.3, 10}
	for _, bv := range boxes {
		b := mustBox(t, bv[0], bv[1], bv[2], bv[3], geom.WebMercator)
		for _, r := range ratios {
			got, err := Expand(b, r)
			if err != nil {
				t.Fatalf("Expand(%s, %g) failed: %v", b, r, err)
			}
			if math.Abs(got.Ratio()-r) > 1e-9*r {
				t.Errorf("Expand(%s, %g): expected ratio %g, got %g", b, r, r, got.Ratio())
			}
			if !got.Contains(b) {
				t.Errorf("Expand(%s, %g) = %s does not contain the input", b, r, got)
			}
			if got.CRS() != b.CRS() {
				t.Errorf("Expected CRS to be kept, got %s", got.CRS())
			}
		}
	}
}

func TestExpandSymmetry(t *testing.T) {
	b := mustBox(t, 10, 20, 14, 40, geom.WebMercator)

	wide, _ := Expand(b, 2)
	padL, padR := b.MinX()-wide.MinX(), wide.MaxX()-b.MaxX()
	if math.Abs(padL-padR) > 1e-9 || padL <= 0 {
		t.Errorf("Expected equal positive horizontal padding, got %g and %g", padL, padR)
	}
	if wide.MinY() != b.MinY() || wide.MaxY() != b.MaxY() {
		t.Errorf("Expected vertical extent unchanged, got %s", wide)
	}

	tall, _ := Expand(b, 0.05)
	padB, padT := b.MinY()-tall.MinY(), tall.MaxY()-b.MaxY()
	if math.Abs(padB-padT) > 1e-9 || padB <= 0 {
		t.Errorf("Expected equal positive vertical padding, got %g and %g", padB, padT)
	}
	if tall.MinX() != b.MinX() || tall.MaxX() != b.MaxX() {
		t.Errorf("Expected horizontal extent unchanged, got %s", tall)
	}
}

func TestExpandMatchingRatioIsNoop(t *testing.T) {
	b := mustBox(t, 0, 0, 4, 2, geom.WebMercator)
	got, err := Expand(b, 2)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if got != b {
		t.Errorf("Expected %s unchanged, got %s", b, got)
	}
	again, _ := Expand(got, 2)
	if again != got {
		t.Errorf("Expected second fit to be a no-op, got %s", again)
	}
}

func TestExpandInvalidRatio(t *testing.T) {
	b := mustBox(t, 0, 0, 1, 1, geom.WebMercator)
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Expand(b, r); !errors.Is(err, ErrInvalidRatio) {
			t.Errorf("Expand(ratio=%v): expected ErrInvalidRatio, got %v", r, err)
		}
	}
}

func TestBBoxMonaco(t *testing.T) {
	in := mustBox(t, 7.40, 43.72, 7.43, 43.74, geom.WGS84)
	geo, proj, err := BBox(in, 2.0)
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}
	if proj.CRS() != geom.WebMercator || geo.CRS() != geom.WGS84 {
		t.Errorf("Unexpected CRS pair %s / %s", geo.CRS(), proj.CRS())
	}
	if math.Abs(proj.Ratio()-2.0) > 1e-6 {
		t.Errorf("Expected projected ratio 2.0, got %.9f", proj.Ratio())
	}
	// Monaco is taller than 2:1 in Mercator space, so it widens
	if !(geo.MinX() < in.MinX() && geo.MaxX() > in.MaxX()) {
		t.Errorf("Expected %s to be strictly wider than %s", geo, in)
	}
	const eps = 1e-9
	if geo.MinY() > in.MinY()+eps || geo.MaxY() < in.MaxY()-eps {
		t.Errorf("Expected %s to contain %s vertically", geo, in)
	}
}

func TestBBoxRoundTrip(t *testing.T) {
	in := mustBox(t, -74.05, 40.68, -73.90, 40.88, geom.WGS84)
	geo, proj, err := BBox(in, 1.5)
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}
	again, err := geo.ToMercator()
	if err != nil {
		t.Fatalf("ToMercator failed: %v", err)
	}
	const eps = 1e-6
	if math.Abs(again.MinX()-proj.MinX()) > eps || math.Abs(again.MinY()-proj.MinY()) > eps ||
		math.Abs(again.MaxX()-proj.MaxX()) > eps || math.Abs(again.MaxY()-proj.MaxY()) > eps {
		t.Errorf("Round trip mismatch: %s vs %s", again, proj)
	}
}

func TestBBoxHighLatitude(t *testing.T) {
	tests := []struct {
		box   [4]float64
		ratio float64
	}{
		{[4]float64{0, 80, 1, 89}, 2},
		{[4]float64{0, 86, 1, 87}, 2},
		{[4]float64{-170, 70, 170, 80}, 0.2},
		{[4]float64{-60, -89.5, 60, -70}, 1},
	}
	for _, tt := range tests {
		in := mustBox(t, tt.box[0], tt.box[1], tt.box[2], tt.box[3], geom.WGS84)
		geo, proj, err := BBox(in, tt.ratio)
		if err != nil {
			t.Fatalf("BBox(%s, %g) failed: %v", in, tt.ratio, err)
		}
		if math.Abs(proj.Ratio()-tt.ratio) > 1e-6*tt.ratio {
			t.Errorf("BBox(%s): expected ratio %g, got %g", in, tt.ratio, proj.Ratio())
		}
		const eps = 1e-9
		if geo.MinX() > in.MinX()+eps || geo.MinY() > in.MinY()+eps ||
			geo.MaxX() < in.MaxX()-eps || geo.MaxY() < in.MaxY()-eps {
			t.Errorf("Expected %s to contain %s", geo, in)
		}
		again, err := geo.ToMercator()
		if err != nil {
			t.Fatalf("ToMercator(%s) failed: %v", geo, err)
		}
		// one meter on boxes up to ~1e8 m tall
		const tol = 1.0
		if math.Abs(again.MinY()-proj.MinY()) > tol || math.Abs(again.MaxY()-proj.MaxY()) > tol ||
			math.Abs(again.MinX()-proj.MinX()) > tol || math.Abs(again.MaxX()-proj.MaxX()) > tol {
			t.Errorf("Round trip mismatch: %s vs %s", again, proj)
		}
	}
}

func TestBBoxPole(t *testing.T) {
	in := mustBox(t, 0, 80, 1, 90, geom.WGS84)
	_, _, err := BBox(in, 2)
	var ice *geom.InvalidCoordinateError
	if !errors.As(err, &ice) {
		t.Errorf("Expected InvalidCoordinateError for a box touching the pole, got %v", err)
	}
}

func TestBBoxWrongCRS(t *testing.T) {
	b := mustBox(t, 0, 0, 1000, 1000, geom.WebMercator)
	if _, _, err := BBox(b, 1); !errors.Is(err, ErrWrongCRS) {
		t.Errorf("Expected ErrWrongCRS, got %v", err)
	}
}

type limits struct {
	b    geom.BBox
	sets int
}

func (l *limits) Limits() geom.BBox      { return l.b }
func (l *limits) SetLimits(b geom.BBox) { l.b = b; l.sets++ }

func TestAxes(t *testing.T) {
	l := &limits{b: mustBox(t, 0, 0, 100, 100, geom.WebMercator)}
	got, err := Axes(l, 0.5)
	if err != nil {
		t.Fatalf("Axes failed: %v", err)
	}
	if l.sets != 1 || l.b != got {
		t.Errorf("Expected fitted limits to be written back once, got %d writes", l.sets)
	}
	if got.MinY() != -50 || got.MaxY() != 150 || got.MinX() != 0 || got.MaxX() != 100 {
		t.Errorf("Expected (0,-50,100,150), got %s", got)
	}

	geo := &limits{b: mustBox(t, 0, 0, 1, 1, geom.WGS84)}
	if _, err := Axes(geo, 1); !errors.Is(err, ErrWrongCRS) {
		t.Errorf("Expected ErrWrongCRS, got %v", err)
	}
}

// Fitting the bbox first and the plot axes afterwards must agree.
func TestDoubleFitIsIdempotent(t *testing.T) {
	in := mustBox(t, 7.40, 43.72, 7.43, 43.74, geom.WGS84)
	_, proj, err := BBox(in, 2.5)
	if err != nil {
		t.Fatalf("BBox failed: %v", err)
	}
	l := &limits{b: proj}
	got, err := Axes(l, 2.5)
	if err != nil {
		t.Fatalf("Axes failed: %v", err)
	}
	tol := 1e-9 * proj.Width()
	if math.Abs(got.Width()-proj.Width()) > tol || math.Abs(got.Height()-proj.Height()) > tol {
		t.Errorf("Expected second fit to be a no-op: %s vs %s", got, proj)
	}
}
