// Package plot runs the whole pipeline from input files to the text that is
// printed: fit the bbox, load, rasterize, fit the axes, draw, composite into
// glyphs and frame the result.
package plot

import (
	"context"
	"fmt"
	"io"
	"log"

	"pixelmap/internal/fit"
	"pixelmap/internal/geom"
	"pixelmap/internal/glyph"
	"pixelmap/internal/raster"
	"pixelmap/internal/tui"
)

// Stage names reported to the progress spinner.
const (
	StageBBox   = "Calculating bounding box"
	StageLoad   = "Loading Geo data"
	StagePlot   = "Plotting geo data"
	StageRender = "Rendering geo data"
)

type Options struct {
	Files []string
	// BBox restricts the map to a WGS84 box; nil shows all data.
	BBox *geom.BBox
	// Renderer names a glyph strategy; empty means glyph.DefaultStrategy.
	Renderer   string
	Borderless bool
	// Tiles draws a basemap under the data when set.
	Tiles    raster.TileSource
	MaxTiles int
	// PixelsPerCell is the raster resolution per terminal column.
	PixelsPerCell int
}

// Run renders opts for the terminal described by rc and returns the text to
// print. Nothing is written to the terminal apart from the progress spinner.
func Run(ctx context.Context, rc *tui.Context, opts Options) (string, error) {
	name := opts.Renderer
	if name == "" {
		name = glyph.DefaultStrategy
	}
	strategy, err := glyph.Lookup(name)
	if err != nil {
		return "", err
	}
	logger := rc.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ppc := opts.PixelsPerCell
	if ppc <= 0 {
		ppc = raster.PixelsPerCell
	}

	cols, rows := rc.MapBudget(opts.Borderless)
	ratio := float64(cols) / float64(2*rows)
	logger.Printf("map budget %dx%d cells, ratio %.4f", cols, rows, ratio)

	progress := tui.StartProgress(rc.Status, rc.ShowProgress)
	defer func() {
		if err := progress.Stop(); err != nil {
			logger.Printf("progress display: %v", err)
		}
	}()

	var clipBox, limits *geom.BBox
	if opts.BBox != nil {
		progress.Stage(StageBBox)
		geo, proj, err := fit.BBox(*opts.BBox, ratio)
		if err != nil {
			return "", fmt.Errorf("fit bbox %s: %w", opts.BBox, err)
		}
		logger.Printf("fitted bbox %s", geo)
		clipBox, limits = &geo, &proj
	}

	progress.Stage(StageLoad)
	data, err := geom.Load(opts.Files, clipBox, logger)
	if err != nil {
		return "", err
	}

	progress.Stage(StagePlot)
	merc, err := data.ToMercator()
	if err != nil {
		return "", err
	}
	w, h := raster.CanvasSize(cols, rows, ppc)
	p, err := raster.NewPlot(merc, w, h)
	if err != nil {
		return "", err
	}
	p.Style = raster.ScaledStyle(ppc)
	p.Tiles = opts.Tiles
	if opts.MaxTiles > 0 {
		p.MaxTiles = opts.MaxTiles
	}
	p.Log = logger
	if limits != nil {
		p.SetLimits(*limits)
	}
	if _, err := fit.Axes(p, ratio); err != nil {
		return "", fmt.Errorf("fit axes: %w", err)
	}
	pix, err := p.Draw(ctx)
	if err != nil {
		return "", fmt.Errorf("draw: %w", err)
	}

	progress.Stage(StageRender)
	grid, err := glyph.Composite(pix, strategy, cols, rows)
	if err != nil {
		return "", err
	}
	extent, err := p.Limits().ToWGS84()
	if err != nil {
		return "", err
	}
	doc := grid.Document(rc.Renderer)
	return tui.FormatPanel(doc, opts.Files, opts.Borderless, extent, rc), nil
}
