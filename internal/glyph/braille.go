package glyph

import "pixelmap/internal/raster"

// brailleBits maps the 2x4 dot grid (row-major, x fastest) to braille bits.
var brailleBits = [8]uint8{
	0x01, 0x08,
	0x02, 0x10,
	0x04, 0x20,
	0x40, 0x80,
}

// brailleStrategy lights the dots brighter than the cell mean; lit dots take
// their mean as foreground, the rest as background.
type brailleStrategy struct{}

func (brailleStrategy) Render(pix *raster.PixelBuffer, maxCols, maxRows int, upscale bool) (Planes, error) {
	return subCellRender(pix, maxCols, maxRows, upscale, 2, 4, func(px []raster.RGB) (rune, Color, Color) {
		lit := splitByLuminance(px)
		if lit == 0 {
			return ' ', Color{}, Some(mean(px, 0, false))
		}
		var dots uint8
		for i, bit := range brailleBits {
			if lit&(1<<uint(i)) != 0 {
				dots |= bit
			}
		}
		return rune(0x2800 + int(dots)), Some(mean(px, lit, true)), Some(mean(px, lit, false))
	})
}
