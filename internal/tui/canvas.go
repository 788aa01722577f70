package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/JackWithOneEye/hilbertchart/internal/lrucache"
)

const halfBlock = "▀"

// sgrPrefixCache caches the SGR prefix of a foreground/background pair, used
// by the run-length row renderer
var sgrPrefixCache = lrucache.New[uint64, string](2048)

func rgb(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// getSGRPrefix returns the ANSI SGR prefix painting top as foreground and
// bottom as background, cached and bounded
func getSGRPrefix(top, bottom uint32) string {
	return sgrPrefixCache.GetOrCompute(uint64(top)<<24|uint64(bottom), func(uint64) string {
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm",
			top>>16&0xff, top>>8&0xff, top&0xff,
			bottom>>16&0xff, bottom>>8&0xff, bottom&0xff)
	})
}

// renderHalfBlocks renders img as rows of half blocks, two pixel rows per
// terminal row. An odd last pixel row gets a background colour of bg.
func renderHalfBlocks(img *image.RGBA, bg color.RGBA, rows []string) []string {
	b := img.Bounds()
	n := (b.Dy() + 1) / 2
	if cap(rows) < n {
		rows = make([]string, n)
	}
	rows = rows[:n]
	for i := range n {
		rows[i] = renderRowRLE(img, b.Min.Y+2*i, bg)
	}
	return rows
}

// renderRowRLE emits one SGR sequence per run of equal cells
func renderRowRLE(img *image.RGBA, y int, bg color.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	sb.Grow(b.Dx()*len(halfBlock) + 64)

	var curTop, curBottom uint32
	runLen := 0
	flush := func() {
		if runLen == 0 {
			return
		}
		sb.WriteString(getSGRPrefix(curTop, curBottom))
		sb.WriteString(strings.Repeat(halfBlock, runLen))
		runLen = 0
	}

	for x := b.Min.X; x < b.Max.X; x++ {
		top := rgb(img.RGBAAt(x, y))
		bottom := rgb(bg)
		if y+1 < b.Max.Y {
			bottom = rgb(img.RGBAAt(x, y+1))
		}
		if runLen > 0 && top == curTop && bottom == curBottom {
			runLen++
			continue
		}
		flush()
		curTop, curBottom = top, bottom
		runLen = 1
	}
	flush()
	sb.WriteString("\x1b[0m")
	return sb.String()
}

// canvasPoint converts a terminal cell inside the chart area to the canvas
// pixel under its upper half.
func canvasPoint(col, row int) (sx, sy float64) {
	return float64(col) + .5, float64(2*row) + .5
}
