package plot

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"pixelmap/internal/geom"
	"pixelmap/internal/glyph"
	"pixelmap/internal/tui"
)

const monaco = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[7.41,43.725],[7.425,43.725],[7.425,43.735],[7.41,43.735],[7.41,43.725]]]}},
  {"type":"Feature","geometry":{"type":"Point","coordinates":[7.42,43.73]}}
]}`

func fixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "monaco.geojson")
	if err := os.WriteFile(p, []byte(monaco), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return p
}

func testContext(width, height int) *tui.Context {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return &tui.Context{Width: width, Height: height, Renderer: r, Status: io.Discard}
}

func TestRunBorderless(t *testing.T) {
	rc := testContext(40, 12)
	out, err := Run(context.Background(), rc, Options{Files: []string{fixture(t)}, Borderless: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != rc.Height {
		t.Errorf("Expected %d lines, got %d", rc.Height, len(lines))
	}
	for _, g := range []string{"╭", "╮", "╰", "╯", "│", "─"} {
		if strings.Contains(out, g) {
			t.Errorf("Expected no border glyph %q in borderless output", g)
		}
	}
}

func TestRunBordered(t *testing.T) {
	rc := testContext(40, 12)
	b, _ := geom.NewBBox(7.40, 43.72, 7.43, 43.74, geom.WGS84)
	for _, renderer := range glyph.Names() {
		out, err := Run(context.Background(), rc, Options{
			Files:    []string{fixture(t)},
			BBox:     &b,
			Renderer: renderer,
		})
		if err != nil {
			t.Fatalf("Run with %s failed: %v", renderer, err)
		}
		lines := strings.Split(ansi.Strip(out), "\n")
		if len(lines) != rc.Height {
			t.Errorf("%s: expected %d lines, got %d", renderer, rc.Height, len(lines))
		}
		for i, l := range lines {
			if w := runewidth.StringWidth(l); w != rc.Width {
				t.Errorf("%s: line %d expected width %d, got %d", renderer, i, rc.Width, w)
			}
		}
		if !strings.Contains(lines[0], "monaco.geojson") {
			t.Errorf("%s: expected file name in title, got %q", renderer, lines[0])
		}
		if !strings.Contains(lines[len(lines)-1], "BBOX") {
			t.Errorf("%s: expected extent in subtitle, got %q", renderer, lines[len(lines)-1])
		}
	}
}

func TestRunUnknownRenderer(t *testing.T) {
	rc := testContext(40, 12)
	_, err := Run(context.Background(), rc, Options{Files: []string{"missing.geojson"}, Renderer: "ascii-art"})
	var ue *glyph.UnknownStrategyError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected UnknownStrategyError before loading, got %v", err)
	}
	if len(ue.Available) == 0 {
		t.Error("Expected available renderers to be listed")
	}
}

func TestRunLoadErrors(t *testing.T) {
	rc := testContext(40, 12)
	_, err := Run(context.Background(), rc, Options{Files: []string{filepath.Join(t.TempDir(), "missing.geojson")}})
	var le *geom.LoadError
	if !errors.As(err, &le) {
		t.Errorf("Expected LoadError, got %v", err)
	}

	far, _ := geom.NewBBox(100, 10, 101, 11, geom.WGS84)
	_, err = Run(context.Background(), rc, Options{Files: []string{fixture(t)}, BBox: &far})
	if !errors.Is(err, geom.ErrNoGeometries) {
		t.Errorf("Expected ErrNoGeometries, got %v", err)
	}
}
