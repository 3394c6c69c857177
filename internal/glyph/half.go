package glyph

import "pixelmap/internal/raster"

// halfStrategy draws an upper half block per cell: top pixel as foreground,
// bottom pixel as background.
type halfStrategy struct{}

func (halfStrategy) Render(pix *raster.PixelBuffer, maxCols, maxRows int, upscale bool) (Planes, error) {
	return subCellRender(pix, maxCols, maxRows, upscale, 1, 2, func(px []raster.RGB) (rune, Color, Color) {
		if px[0] == px[1] {
			return ' ', Color{}, Some(px[1])
		}
		return '▀', Some(px[0]), Some(px[1])
	})
}
