package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"pixelmap/internal/geom"
	"pixelmap/internal/glyph"
)

func countLabel(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

// Title names the input files in at most width-4 cells. Base names are
// added in order while they fit, the rest summarized as "+ N other files";
// when not even the first name fits the title is the plain file count.
func Title(files []string, width int) string {
	budget := width - 4
	title := countLabel(len(files))
	var names []string
	for i, f := range files {
		names = append(names, filepath.Base(f))
		candidate := strings.Join(names, ", ")
		switch rest := len(files) - i - 1; {
		case rest == 1:
			candidate += " + 1 other file"
		case rest > 1:
			candidate += fmt.Sprintf(" + %d other files", rest)
		}
		if runewidth.StringWidth(candidate) > budget {
			break
		}
		title = candidate
	}
	return title
}

// Subtitle formats a geographic extent.
func Subtitle(b geom.BBox) string {
	return fmt.Sprintf("BBOX: %.5f,%.5f,%.5f,%.5f", b.MinX(), b.MinY(), b.MaxX(), b.MaxY())
}

// edge draws one horizontal border edge of width inner cells with label
// centered in it.
func edge(left, fill, right, label string, border, text lipgloss.Style, inner int) string {
	if label != "" {
		label = " " + label + " "
	}
	if runewidth.StringWidth(label) > inner {
		label = runewidth.Truncate(label, inner, "…")
	}
	w := runewidth.StringWidth(label)
	pad := inner - w
	var sb strings.Builder
	sb.WriteString(border.Render(left + strings.Repeat(fill, pad/2)))
	if label != "" {
		sb.WriteString(text.Render(label))
	}
	sb.WriteString(border.Render(strings.Repeat(fill, pad-pad/2) + right))
	return sb.String()
}

// FormatPanel frames doc in a rounded border with the file title in the top
// edge and the extent in the bottom edge. Borderless output is doc as is.
func FormatPanel(doc glyph.Document, files []string, borderless bool, extent geom.BBox, rc *Context) string {
	if borderless {
		return doc.String()
	}
	b := lipgloss.RoundedBorder()
	border, title, subtitle := panelStyles(rc.Renderer)
	lines := make([]string, 0, len(doc.Lines)+2)
	lines = append(lines, edge(b.TopLeft, b.Top, b.TopRight, Title(files, rc.Width), border, title, doc.Width))
	for _, l := range doc.Lines {
		lines = append(lines, border.Render(b.Left)+l+border.Render(b.Right))
	}
	lines = append(lines, edge(b.BottomLeft, b.Bottom, b.BottomRight, Subtitle(extent), border, subtitle, doc.Width))
	return strings.Join(lines, "\n")
}
