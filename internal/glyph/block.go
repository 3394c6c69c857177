package glyph

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"pixelmap/internal/raster"
)

// quadrantChars maps a 2x2 mask to its block glyph.
// Bits: 0 upper-left, 1 upper-right, 2 lower-left, 3 lower-right.
var quadrantChars = [16]rune{
	' ', '▘', '▝', '▀',
	'▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜',
	'▄', '▙', '▟', '█',
}

// blockStrategy renders 2x2 sub-pixels per cell with quadrant blocks. The
// fast variant splits pixels at the mean luminance; the exact variant tries
// every mask and keeps the one with the least CIE-Lab error.
type blockStrategy struct {
	exact bool
}

func (b blockStrategy) Render(pix *raster.PixelBuffer, maxCols, maxRows int, upscale bool) (Planes, error) {
	pick := b.fast
	if b.exact {
		pick = b.best
	}
	return subCellRender(pix, maxCols, maxRows, upscale, 2, 2, pick)
}

func (blockStrategy) fast(px []raster.RGB) (rune, Color, Color) {
	mask := splitByLuminance(px)
	if mask == 0 {
		return ' ', Color{}, Some(mean(px, 0, false))
	}
	return quadrantChars[mask], Some(mean(px, mask, true)), Some(mean(px, mask, false))
}

func lab(c raster.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func (blockStrategy) best(px []raster.RGB) (rune, Color, Color) {
	var cols [4]colorful.Color
	for i, c := range px {
		cols[i] = lab(c)
	}
	bestMask, bestErr := uint(0), math.Inf(1)
	var bestFG, bestBG raster.RGB
	// masks 8..15 mirror 0..7 with the colors swapped
	for mask := uint(0); mask < 8; mask++ {
		fg, bg := mean(px, mask, true), mean(px, mask, false)
		lf, lb := lab(fg), lab(bg)
		var e float64
		for i := range px {
			if mask&(1<<uint(i)) != 0 {
				e += cols[i].DistanceLab(lf)
			} else {
				e += cols[i].DistanceLab(lb)
			}
		}
		if e < bestErr {
			bestMask, bestErr, bestFG, bestBG = mask, e, fg, bg
		}
	}
	if bestMask == 0 {
		return ' ', Color{}, Some(bestBG)
	}
	return quadrantChars[bestMask], Some(bestFG), Some(bestBG)
}
