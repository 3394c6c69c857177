// Package glyph turns a pixel buffer into a grid of colored terminal cells.
package glyph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pixelmap/internal/raster"
)

var ErrShapeMismatch = errors.New("glyph: strategy returned planes of different shapes")

// Color is an optional RGB color. The zero value means terminal default.
type Color struct {
	RGB   raster.RGB
	Valid bool
}

func Some(c raster.RGB) Color { return Color{RGB: c, Valid: true} }

// Cell is one terminal position. Char 0 renders as a space.
type Cell struct {
	Char   rune
	FG, BG Color
}

// Planes are the three parallel arrays a Strategy produces.
type Planes struct {
	Chars [][]rune
	FG    [][]Color
	BG    [][]Color
}

// NewPlanes allocates rows x cols planes.
func NewPlanes(rows, cols int) Planes {
	p := Planes{
		Chars: make([][]rune, rows),
		FG:    make([][]Color, rows),
		BG:    make([][]Color, rows),
	}
	for r := 0; r < rows; r++ {
		p.Chars[r] = make([]rune, cols)
		p.FG[r] = make([]Color, cols)
		p.BG[r] = make([]Color, cols)
	}
	return p
}

// shape validates the planes and returns their common size.
func (p Planes) shape() (rows, cols int, err error) {
	rows = len(p.Chars)
	if len(p.FG) != rows || len(p.BG) != rows {
		return 0, 0, fmt.Errorf("%w: %d/%d/%d rows", ErrShapeMismatch, rows, len(p.FG), len(p.BG))
	}
	if rows > 0 {
		cols = len(p.Chars[0])
	}
	for r := 0; r < rows; r++ {
		if len(p.Chars[r]) != cols || len(p.FG[r]) != cols || len(p.BG[r]) != cols {
			return 0, 0, fmt.Errorf("%w: row %d", ErrShapeMismatch, r)
		}
	}
	return rows, cols, nil
}

// Grid is a Rows x Cols array of cells.
type Grid struct {
	Rows, Cols int
	Cells      [][]Cell
}

// Composite runs s over pix and zips its planes into a Grid. Upscaling is
// allowed so small rasters still fill the budget.
func Composite(pix *raster.PixelBuffer, s Strategy, maxCols, maxRows int) (*Grid, error) {
	if maxCols <= 0 || maxRows <= 0 {
		return nil, fmt.Errorf("glyph: invalid cell budget %dx%d", maxCols, maxRows)
	}
	planes, err := s.Render(pix, maxCols, maxRows, true)
	if err != nil {
		return nil, err
	}
	rows, cols, err := planes.shape()
	if err != nil {
		return nil, err
	}
	if rows > maxRows || cols > maxCols {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrShapeMismatch, cols, rows, maxCols, maxRows)
	}
	g := &Grid{Rows: rows, Cols: cols, Cells: make([][]Cell, rows)}
	for r := 0; r < rows; r++ {
		g.Cells[r] = make([]Cell, cols)
		for c := 0; c < cols; c++ {
			g.Cells[r][c] = Cell{Char: planes.Chars[r][c], FG: planes.FG[r][c], BG: planes.BG[r][c]}
		}
	}
	return g, nil
}

// Document is the styled text of a grid, one line per row.
type Document struct {
	Lines []string
	Width int
}

func (d Document) String() string { return strings.Join(d.Lines, "\n") }

type cellStyle struct{ fg, bg Color }

// Document renders each cell as one styled run through r.
func (g *Grid) Document(r *lipgloss.Renderer) Document {
	styles := map[cellStyle]lipgloss.Style{}
	styleFor := func(c Cell) lipgloss.Style {
		key := cellStyle{c.FG, c.BG}
		if st, ok := styles[key]; ok {
			return st
		}
		st := r.NewStyle()
		if c.FG.Valid {
			st = st.Foreground(lipgloss.Color(c.FG.RGB.Hex()))
		}
		if c.BG.Valid {
			st = st.Background(lipgloss.Color(c.BG.RGB.Hex()))
		}
		styles[key] = st
		return st
	}
	doc := Document{Lines: make([]string, g.Rows), Width: g.Cols}
	for y, row := range g.Cells {
		var sb strings.Builder
		for _, c := range row {
			ch := c.Char
			if ch == 0 {
				ch = ' '
			}
			sb.WriteString(styleFor(c).Render(string(ch)))
		}
		doc.Lines[y] = sb.String()
	}
	return doc
}
