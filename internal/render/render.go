// Package render draws laid-out ranges under a viewport transform.
//
// Two backends share one input, the Frame: Vector builds a retained scene of
// SVG shapes and Raster paints pixels and answers picking queries.
package render

import (
	"image/color"
	"math"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/viewport"
	"github.com/lucasb-eyer/go-colorful"
)

type Kind int

const (
	KindVector Kind = iota
	KindRaster
)

func (k Kind) String() string {
	if k == KindRaster {
		return "raster"
	}
	return "vector"
}

// Item is a laid-out range with its accessors resolved.
type Item struct {
	Layout hilbert.Layout

	// Index is the position of the range in the dataset.
	Index int

	Color      color.RGBA
	Label      string
	LabelColor color.RGBA

	// Padding is the fraction of a cell left empty around the stroke.
	Padding float64
	// PaddingAbsolute is extra padding in screen pixels.
	PaddingAbsolute float64
}

func (it *Item) Range() *ranges.Range {
	return it.Layout.Range
}

// StrokeWidth returns the stroke width in cell units at zoom k.
func (it *Item) StrokeWidth(k float64) float64 {
	pad := it.Padding
	if it.PaddingAbsolute > 0 && it.Layout.CellWidth > 0 {
		pad += it.PaddingAbsolute / (it.Layout.CellWidth * k)
	}
	return 1 - max(0, min(1, pad))
}

// canvasBounds returns the unzoomed canvas rectangle covered by the item.
func (it *Item) canvasBounds() (x0, y0, x1, y1 float64) {
	b, cw := it.Layout.Bounds, it.Layout.CellWidth
	return float64(b.MinX) * cw, float64(b.MinY) * cw, float64(b.MaxX) * cw, float64(b.MaxY) * cw
}

// Frame is everything a backend needs to draw once.
type Frame struct {
	Items     []Item
	Transform viewport.Transform
	Window    viewport.Window

	// InMotion is set while a zoom gesture or animation is running.
	InMotion bool
}

type Backend interface {
	Kind() Kind
	Resize(width float64)
	Draw(f Frame)
}

// Picker is implemented by backends that resolve screen points themselves.
type Picker interface {
	Pick(sx, sy float64) *ranges.Range
	// InvalidatePicks drops the pick buffer until the next settled frame.
	InvalidatePicks()
}

// Visible returns the items intersecting the window, in dataset order.
func Visible(items []Item, w viewport.Window) []Item {
	out := make([]Item, 0, len(items))
	for i := range items {
		if w.Intersects(items[i].canvasBounds()) {
			out = append(out, items[i])
		}
	}
	return out
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	return cf.Hex()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
