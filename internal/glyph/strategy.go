package glyph

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"

	"pixelmap/internal/raster"
)

// Strategy converts a pixel buffer into glyph planes of at most
// maxCols x maxRows cells.
type Strategy interface {
	Render(pix *raster.PixelBuffer, maxCols, maxRows int, upscale bool) (Planes, error)
}

// DefaultStrategy is the strategy used when none is requested.
const DefaultStrategy = "block"

var (
	mu         sync.RWMutex
	strategies = map[string]Strategy{}
)

// Register makes a strategy available by name, replacing any previous one.
func Register(name string, s Strategy) {
	mu.Lock()
	defer mu.Unlock()
	strategies[name] = s
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// UnknownStrategyError is returned by Lookup for an unregistered name
type UnknownStrategyError struct {
	Name      string
	Available []string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown renderer %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func Lookup(name string) (Strategy, error) {
	mu.RLock()
	s, ok := strategies[name]
	mu.RUnlock()
	if !ok {
		return nil, &UnknownStrategyError{Name: name, Available: Names()}
	}
	return s, nil
}

func init() {
	Register("block", blockStrategy{exact: false})
	Register("block-exact", blockStrategy{exact: true})
	Register("half", halfStrategy{})
	Register("braille", brailleStrategy{})
}

// FitCells picks the grid size for a w x h raster. Each cell covers a 1:2
// pixel area; the raster is scaled by one factor on both axes so the result
// fits maxCols x maxRows. Without upscale the factor never drops below 1.
func FitCells(w, h, maxCols, maxRows int, upscale bool) (cols, rows int) {
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	k := math.Max(float64(w)/float64(maxCols), float64(h)/float64(2*maxRows))
	if !upscale && k < 1 {
		k = 1
	}
	cols = int(math.Round(float64(w) / k))
	rows = int(math.Round(float64(h) / (2 * k)))
	return max(1, min(cols, maxCols)), max(1, min(rows, maxRows))
}

// sampler holds the raster resampled to subW x subH sub-pixels per cell.
type sampler struct {
	pix        *raster.PixelBuffer
	subW, subH int
}

func newSampler(pix *raster.PixelBuffer, cols, rows, subW, subH int) sampler {
	w, h := cols*subW, rows*subH
	if pix.Width == w && pix.Height == h {
		return sampler{pix: pix, subW: subW, subH: subH}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), pix.ToRGBA(), pix.Bounds(), xdraw.Src, nil)
	return sampler{pix: raster.FromImage(dst), subW: subW, subH: subH}
}

// cell returns the sub-pixels of one cell, row-major.
func (s sampler) cell(row, col int, out []raster.RGB) []raster.RGB {
	out = out[:0]
	for dy := 0; dy < s.subH; dy++ {
		for dx := 0; dx < s.subW; dx++ {
			out = append(out, s.pix.RGBAt(col*s.subW+dx, row*s.subH+dy))
		}
	}
	return out
}

func luminance(c raster.RGB) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// mean averages the pixels whose bit in mask equals want.
func mean(px []raster.RGB, mask uint, want bool) raster.RGB {
	var r, g, b, n int
	for i, c := range px {
		if (mask&(1<<uint(i)) != 0) != want {
			continue
		}
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
		n++
	}
	if n == 0 {
		return raster.RGB{}
	}
	return raster.RGB{R: uint8((r + n/2) / n), G: uint8((g + n/2) / n), B: uint8((b + n/2) / n)}
}

// splitByLuminance sets a bit for every pixel brighter than the average.
func splitByLuminance(px []raster.RGB) uint {
	var sum float64
	lum := make([]float64, len(px))
	for i, c := range px {
		lum[i] = luminance(c)
		sum += lum[i]
	}
	avg := sum / float64(len(px))
	var mask uint
	for i, l := range lum {
		if l > avg {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// subCellRender walks the grid and lets pick decide each cell from its sub-pixels.
func subCellRender(pix *raster.PixelBuffer, maxCols, maxRows int, upscale bool, subW, subH int,
	pick func(px []raster.RGB) (rune, Color, Color)) (Planes, error) {
	if pix == nil || pix.Width == 0 || pix.Height == 0 {
		return Planes{}, fmt.Errorf("glyph: empty pixel buffer")
	}
	cols, rows := FitCells(pix.Width, pix.Height, maxCols, maxRows, upscale)
	s := newSampler(pix, cols, rows, subW, subH)
	p := NewPlanes(rows, cols)
	buf := make([]raster.RGB, 0, subW*subH)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			buf = s.cell(r, c, buf)
			p.Chars[r][c], p.FG[r][c], p.BG[r][c] = pick(buf)
		}
	}
	return p, nil
}
