package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"

	"pixelmap/internal/geom"
)

const (
	// DegeneratePad is added on both sides of a zero-width or zero-height
	// data extent, in meters.
	DegeneratePad = 50.0
	// MaxZoom is the deepest tile zoom level requested.
	MaxZoom = 19
	// DefaultMaxTiles bounds the number of tiles fetched per draw.
	DefaultMaxTiles = 64
	tileSize        = 256
)

var ErrNotProjected = errors.New("raster: geometries must be in Web-Mercator")

// Plot is a fixed-size canvas over a Web-Mercator extent.
type Plot struct {
	Style    Style
	Tiles    TileSource // nil draws no basemap
	MaxTiles int
	Log      *log.Logger

	data          geom.Data
	width, height int
	limits        geom.BBox
}

// NewPlot prepares a width x height pixel canvas for data. The initial limits
// are the data extent, padded by DegeneratePad where it has no width or height.
func NewPlot(data geom.Data, width, height int) (*Plot, error) {
	if data.CRS != geom.WebMercator {
		return nil, ErrNotProjected
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid canvas size %dx%d", width, height)
	}
	minX, minY, maxX, maxY, ok := data.Extent()
	if !ok {
		return nil, geom.ErrNoGeometries
	}
	if maxX-minX <= 0 {
		minX, maxX = minX-DegeneratePad, maxX+DegeneratePad
	}
	if maxY-minY <= 0 {
		minY, maxY = minY-DegeneratePad, maxY+DegeneratePad
	}
	limits, err := geom.NewBBox(minX, minY, maxX, maxY, geom.WebMercator)
	if err != nil {
		return nil, err
	}
	return &Plot{
		Style:    DefaultStyle(),
		MaxTiles: DefaultMaxTiles,
		Log:      log.New(io.Discard, "", 0),
		data:     data,
		width:    width,
		height:   height,
		limits:   limits,
	}, nil
}

func (p *Plot) Limits() geom.BBox         { return p.limits }
func (p *Plot) SetLimits(b geom.BBox)     { p.limits = b }
func (p *Plot) Size() (width, height int) { return p.width, p.height }

// toPixel maps a projected coordinate to canvas pixels (y grows downwards).
func (p *Plot) toPixel(pt orb.Point) (float64, float64) {
	l := p.limits
	x := (pt[0] - l.MinX()) / l.Width() * float64(p.width)
	y := (l.MaxY() - pt[1]) / l.Height() * float64(p.height)
	return x, y
}

// Draw paints the background, the basemap and the geometries in that order.
// Tile errors are logged and the tile is left out; only cancellation of ctx
// aborts the draw.
func (p *Plot) Draw(ctx context.Context) (*PixelBuffer, error) {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(p.Style.Background)
	dc.Clear()

	if p.Tiles != nil {
		if err := p.drawBasemap(ctx, img); err != nil {
			return nil, err
		}
	}

	c := p.Style.Fill
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, p.Style.Alpha)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.SetLineWidth(p.Style.LineWidth)

	for _, poly := range p.data.Polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			dc.NewSubPath()
			for i, pt := range ring {
				x, y := p.toPixel(pt)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
		}
		dc.Fill()
	}
	for _, ls := range p.data.Lines {
		for i, pt := range ls {
			x, y := p.toPixel(pt)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
	for _, pt := range p.data.Points {
		x, y := p.toPixel(pt)
		dc.DrawCircle(x, y, p.Style.PointRadius)
		dc.Fill()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

func tileCount(l geom.BBox, z int) int {
	x0, y0, x1, y1 := tileRange(l, z)
	return (x1 - x0 + 1) * (y1 - y0 + 1)
}

// tileRange returns the inclusive tile index range covering l at zoom z.
// x indexes may fall outside [0, 2^z) and wrap around the antimeridian; y is clamped.
func tileRange(l geom.BBox, z int) (x0, y0, x1, y1 int) {
	n := 1 << z
	size := 2 * geom.MercatorExtent / float64(n)
	x0 = int(math.Floor((l.MinX() + geom.MercatorExtent) / size))
	x1 = int(math.Ceil((l.MaxX()+geom.MercatorExtent)/size)) - 1
	y0 = int(math.Floor((geom.MercatorExtent - l.MaxY()) / size))
	y1 = int(math.Ceil((geom.MercatorExtent-l.MinY())/size)) - 1
	clamp := func(v int) int { return max(0, min(n-1, v)) }
	return x0, clamp(y0), x1, clamp(y1)
}

// TileZoom picks the shallowest zoom whose tiles are at least as detailed as
// the canvas, then backs off until at most maxTiles tiles cover the limits.
func TileZoom(l geom.BBox, width, maxTiles int) int {
	perPixel := l.Width() / float64(width)
	z := 0
	for ; z < MaxZoom; z++ {
		if 2*geom.MercatorExtent/float64(int(tileSize)<<z) <= perPixel {
			break
		}
	}
	if maxTiles <= 0 {
		maxTiles = DefaultMaxTiles
	}
	for z > 0 && tileCount(l, z) > maxTiles {
		z--
	}
	return z
}

func (p *Plot) drawBasemap(ctx context.Context, dst *image.RGBA) error {
	l := p.limits
	z := TileZoom(l, p.width, p.MaxTiles)
	n := 1 << z
	size := 2 * geom.MercatorExtent / float64(n)
	x0, y0, x1, y1 := tileRange(l, z)
	p.Log.Printf("basemap: zoom %d, tiles x %d..%d y %d..%d", z, x0, x1, y0, y1)
	sx := float64(p.width) / l.Width()
	sy := float64(p.height) / l.Height()
	for ty := y0; ty <= y1; ty++ {
		for tx := x0; tx <= x1; tx++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := p.Tiles.Tile(ctx, z, ((tx%n)+n)%n, ty)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.Log.Printf("basemap: skipping tile %d/%d/%d: %v", z, tx, ty, err)
				continue
			}
			left := -geom.MercatorExtent + float64(tx)*size
			top := geom.MercatorExtent - float64(ty)*size
			r := image.Rect(
				int(math.Floor((left-l.MinX())*sx)),
				int(math.Floor((l.MaxY()-top)*sy)),
				int(math.Ceil((left+size-l.MinX())*sx)),
				int(math.Ceil((l.MaxY()-top+size)*sy)),
			)
			xdraw.ApproxBiLinear.Scale(dst, r, img, img.Bounds(), xdraw.Src, nil)
		}
	}
	return nil
}
