package chart

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/JackWithOneEye/hilbertchart/internal/logging"
	"github.com/JackWithOneEye/hilbertchart/internal/lrucache"
	"github.com/lucasb-eyer/go-colorful"
)

// Category20 is the default ordinal palette.
var Category20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

const fallbackColor = "#7f7f7f"

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
	"orange": "#ffa500",
	"purple": "#800080",
	"gray":   "#808080",
	"grey":   "#808080",
}

var colorCache = lrucache.New[string, color.RGBA](1024)

// ParseColor parses #rgb, #rrggbb or a basic colour name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// toRGBA parses s through the cache. Unparsable colours are logged and
// drawn grey.
func toRGBA(s string) color.RGBA {
	return colorCache.GetOrCompute(s, func(s string) color.RGBA {
		c, err := ParseColor(s)
		if err != nil {
			logging.Logger().Debug("invalid colour", "error", err)
			c, _ = ParseColor(fallbackColor)
		}
		return c
	})
}

// ordinalScale hands out palette colours to keys in order of first use.
type ordinalScale struct {
	palette []string
	index   map[string]int
}

func newOrdinalScale(palette []string, domain []string) *ordinalScale {
	s := &ordinalScale{palette: palette, index: make(map[string]int, len(domain))}
	for _, k := range domain {
		s.color(k)
	}
	return s
}

func (s *ordinalScale) color(key string) string {
	i, ok := s.index[key]
	if !ok {
		i = len(s.index)
		s.index[key] = i
	}
	return s.palette[i%len(s.palette)]
}

// contrastColor returns black or white, whichever reads better on bg.
func contrastColor(bg color.RGBA) string {
	c, _ := colorful.MakeColor(bg)
	if l, _, _ := c.Lab(); l > .6 {
		return "#000000"
	}
	return "#ffffff"
}
