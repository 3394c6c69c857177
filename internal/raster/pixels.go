// Package raster draws geometry sets onto a fixed-size RGB canvas.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// PixelsPerCell is the default number of raster pixels per terminal column.
// A row covers twice as many pixels, since a cell is twice as tall as wide.
const PixelsPerCell = 10

// CanvasSize returns the raster size for a budget of cols x rows cells.
func CanvasSize(cols, rows, ppc int) (w, h int) {
	if ppc <= 0 {
		ppc = PixelsPerCell
	}
	return cols * ppc, rows * 2 * ppc
}

// RGB is one pixel; channels are 0-255.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color (fully opaque).
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// PixelBuffer is a dense row-major RGB raster, 3 bytes per pixel.
type PixelBuffer struct {
	Width, Height int
	Pix           []uint8
}

func NewPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

// FromImage flattens any image to RGB, dropping alpha.
func FromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	pb := NewPixelBuffer(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < pb.Height; y++ {
			src := rgba.Pix[(y+b.Min.Y-rgba.Rect.Min.Y)*rgba.Stride+(b.Min.X-rgba.Rect.Min.X)*4:]
			dst := pb.Pix[y*pb.Width*3:]
			for x := 0; x < pb.Width; x++ {
				dst[x*3], dst[x*3+1], dst[x*3+2] = src[x*4], src[x*4+1], src[x*4+2]
			}
		}
		return pb
	}
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			pb.Set(x, y, RGB{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8)})
		}
	}
	return pb
}

// RGBAt returns the pixel at x,y. Out of range reads return black.
func (p *PixelBuffer) RGBAt(x, y int) RGB {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return RGB{}
	}
	i := (y*p.Width + x) * 3
	return RGB{p.Pix[i], p.Pix[i+1], p.Pix[i+2]}
}

func (p *PixelBuffer) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return
	}
	i := (y*p.Width + x) * 3
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = c.R, c.G, c.B
}

func (p *PixelBuffer) ColorModel() color.Model { return color.RGBAModel }
func (p *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, p.Width, p.Height) }
func (p *PixelBuffer) At(x, y int) color.Color { return p.RGBAt(x, y) }

// ToRGBA copies the buffer into an opaque *image.RGBA.
func (p *PixelBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(p.Bounds())
	for i, j := 0, 0; i < len(p.Pix); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = p.Pix[i], p.Pix[i+1], p.Pix[i+2], 0xff
	}
	return img
}
