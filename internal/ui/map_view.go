package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-greatcircle/internal/raster"
)

const (
	glyphHalfBlock = '▀'
	glyphAnchor    = '◆'

	colorBackground   = "236"
	colorAnchor       = "#F2C94C"
	colorAnchorNewest = "#9D4EDD"
)

// marker is an anchor position in terminal cells.
type marker struct {
	col, row int
	newest   bool
}

// paintMap renders img into cols×rows cells. Each cell shows two pixels
// stacked vertically: the upper as the foreground of a half block, the lower
// as its background. Cells outside img, or all of them when img is nil, are
// left dark.
func paintMap(img *raster.Rendered, cols, rows int, markers []marker) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	at := make(map[[2]int]marker, len(markers))
	for _, mk := range markers {
		at[[2]int{mk.col, mk.row}] = mk
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top, topOK := pixel(img, x, 2*y)
			bottom, bottomOK := pixel(img, x, 2*y+1)

			style := lipgloss.NewStyle()
			bg := lipgloss.Color(colorBackground)
			if bottomOK {
				bg = hexColor(bottom)
			}
			style = style.Background(bg)

			if mk, ok := at[[2]int{x, y}]; ok {
				fg := colorAnchor
				if mk.newest {
					fg = colorAnchorNewest
				}
				b.WriteString(style.Foreground(lipgloss.Color(fg)).Bold(true).Render(string(glyphAnchor)))
				continue
			}

			if !topOK {
				b.WriteString(style.Render(" "))
				continue
			}
			b.WriteString(style.Foreground(hexColor(top)).Render(string(glyphHalfBlock)))
		}
		if y < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func pixel(img *raster.Rendered, x, y int) (color.RGBA, bool) {
	if img == nil || x >= img.Width() || y >= img.Height() {
		return color.RGBA{}, false
	}
	return img.At(x, y), true
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}
