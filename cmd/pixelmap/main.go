package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pixelmap/internal/config"
	"pixelmap/internal/geom"
	"pixelmap/internal/glyph"
	"pixelmap/internal/plot"
	"pixelmap/internal/raster"
	"pixelmap/internal/tui"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

const usage = `Usage: pixelmap [--version] plot [--version] [flags] FILE...

Render geo files as a map in the terminal.
`

// exitError carries a specific exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pixelmap %s\n", version)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixelmap: %v\n", err)
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		os.Exit(code)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return &exitError{2, errors.New("missing command")}
	}
	switch args[0] {
	case "--version", "-version", "-v":
		printVersion(stdout)
		return nil
	case "-h", "--help", "-help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	case "plot":
		return runPlot(ctx, args[1:], stdout, stderr)
	}
	fmt.Fprint(stderr, usage)
	return &exitError{2, fmt.Errorf("unknown command %q", args[0])}
}

// parseInterleaved lets flags follow positional arguments, as in
// "plot a.geojson --no-border b.geojson".
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func runPlot(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfgPath := config.File()
	for i, a := range args {
		if (a == "--config" || a == "-config") && i+1 < len(args) {
			cfgPath = args[i+1]
		} else if v, ok := strings.CutPrefix(a, "--config="); ok {
			cfgPath = v
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", cfgPath, "config file")
	bbox := fs.String("bbox", "", `restrict the map to "minx,miny,maxx,maxy" (WGS84)`)
	renderer := fs.String("renderer", cfg.Renderer, "glyph renderer: "+strings.Join(glyph.Names(), ", "))
	noBorder := fs.Bool("no-border", !cfg.Border, "print the map without the surrounding panel")
	basemap := fs.String("basemap", cfg.Basemap, "basemap: "+strings.Join(raster.BasemapNames(), ", "))
	tileURL := fs.String("tile-url", cfg.TileURL, "custom XYZ tile URL template, overrides --basemap")
	color := fs.String("color", cfg.Color, "color mode: "+strings.Join(tui.ColorModes, ", "))
	ppc := fs.Int("pixels-per-cell", cfg.PixelsPerCell, "raster pixels per terminal column")
	logFile := fs.String("log-file", "", "write diagnostics to this file")
	verbose := fs.Bool("verbose", false, "write diagnostics to stderr")
	var showVersion bool
	fs.BoolVar(&showVersion, "version", false, "print the version and exit")
	fs.BoolVar(&showVersion, "v", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage+"\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nSupported formats: %s\n", strings.Join(sortedFormats(), " "))
	}

	files, err := parseInterleaved(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return &exitError{2, err}
	}
	if showVersion {
		printVersion(stdout)
		return nil
	}
	if len(files) == 0 {
		fs.Usage()
		return &exitError{2, errors.New("no input files")}
	}

	logger := log.New(io.Discard, "", 0)
	switch {
	case *logFile != "":
		f, err := tea.LogToFile(*logFile, "pixelmap")
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		logger = log.Default()
	case *verbose:
		logger = log.New(stderr, "pixelmap: ", log.Ltime)
	}

	opts := plot.Options{
		Files:         files,
		Renderer:      *renderer,
		Borderless:    *noBorder,
		PixelsPerCell: *ppc,
		MaxTiles:      cfg.MaxTiles,
	}
	if *bbox != "" {
		b, err := geom.ParseBBox(*bbox)
		if err != nil {
			return &exitError{2, err}
		}
		opts.BBox = &b
	}
	if opts.Tiles, err = tileSource(cfg, *basemap, *tileURL, logger); err != nil {
		return err
	}

	rc, err := tui.NewContext(*color, logger)
	if err != nil {
		return err
	}
	rc.Status = stderr
	out, err := plot.Run(ctx, rc, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func tileSource(cfg *config.Config, basemap, url string, logger *log.Logger) (raster.TileSource, error) {
	if url == "" {
		if basemap == "" || basemap == "none" {
			return nil, nil
		}
		var ok bool
		if url, ok = raster.Basemaps[basemap]; !ok {
			return nil, fmt.Errorf("unknown basemap %q (available: %s)", basemap, strings.Join(raster.BasemapNames(), ", "))
		}
	}
	t, err := raster.NewHTTPTiles(url, cfg.TileCacheSize, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	t.UserAgent = cfg.UserAgent
	t.CacheDir = cfg.TileCache()
	t.Log = logger
	return t, nil
}

func sortedFormats() []string {
	f := geom.Formats()
	sort.Strings(f)
	return f
}
