package render

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func layoutItems(t *testing.T, order int, width float64, rs ...*ranges.Range) []Item {
	t.Helper()
	curve, err := hilbert.NewCurve(order, width)
	require.NoError(t, err)
	layouts, err := curve.LayoutAll(rs)
	require.NoError(t, err)
	items := make([]Item, len(layouts))
	for i, l := range layouts {
		items[i] = Item{Layout: l, Index: i, Color: red, LabelColor: color.RGBA{A: 0xff}}
	}
	return items
}

func TestPathData(t *testing.T) {
	dirs := []hilbert.Direction{hilbert.Right, hilbert.Right, hilbert.Down, hilbert.Left}
	assert.Equal(t, "M0 0L0 0h1h1v1h-1", pathData(0, 0, dirs, false))
	assert.Equal(t, "M0 0L0 0h2v1h-1", pathData(0, 0, dirs, true))
	assert.Equal(t, "M0 0L0 0", pathData(0, 0, nil, false))
}

func TestFitPathLabel(t *testing.T) {
	l := hilbert.Layout{CellWidth: 4, PathVertices: make([]hilbert.Direction, 9)}
	for i := range l.PathVertices {
		l.PathVertices[i] = hilbert.Down
	}

	lbl, ok := FitLabel("abc", l, false)
	require.True(t, ok)
	assert.InDelta(t, .7, lbl.FontSize, 1e-12)
	assert.InDelta(t, 1.2, lbl.TextLength, 1e-12)
	assert.InDelta(t, (1-1.2/9)/2*100, lbl.StartOffset, 1e-9)
	assert.Equal(t, "M0 0L0 0v1v1v1v1v1v1v1v1v1", lbl.Path)

	long := hilbert.Layout{CellWidth: 4, PathVertices: []hilbert.Direction{hilbert.Up}}
	_, ok = FitLabel("seventeen letters", long, false)
	assert.False(t, ok)
	_, ok = FitLabel("", l, false)
	assert.False(t, ok)
}

func TestFitCellLabel(t *testing.T) {
	lbl, ok := FitLabel("abc", hilbert.Layout{CellWidth: 40}, false)
	require.True(t, ok)
	assert.InDelta(t, .45, lbl.TextLength, 1e-12)
	assert.Empty(t, lbl.Path)

	lbl, ok = FitLabel("abcdefghijklmnop", hilbert.Layout{CellWidth: 400}, false)
	require.True(t, ok)
	assert.Equal(t, .95, lbl.TextLength)

	_, ok = FitLabel("abc", hilbert.Layout{CellWidth: 4}, false)
	assert.False(t, ok)
}

func TestLeftwardLabelIsReversed(t *testing.T) {
	l := hilbert.Layout{
		CellWidth:    10,
		PathVertices: []hilbert.Direction{hilbert.Left, hilbert.Left, hilbert.Left},
	}
	lbl, ok := FitLabel("ab", l, false)
	require.True(t, ok)
	assert.Equal(t, "M-3 0L-3 0h1h1h1", lbl.Path)

	lbl, _ = FitLabel("ab", l, true)
	assert.Equal(t, "M-3 0L-3 0h3", lbl.Path)
}

func TestStrokeWidth(t *testing.T) {
	it := Item{Layout: hilbert.Layout{CellWidth: 25}, Padding: .1, PaddingAbsolute: 5}
	assert.InDelta(t, .8, it.StrokeWidth(2), 1e-12)
	assert.InDelta(t, .7, it.StrokeWidth(1), 1e-12)

	it = Item{Layout: hilbert.Layout{CellWidth: 25}, Padding: 3}
	assert.Equal(t, 0.0, it.StrokeWidth(1))
}

func TestVectorScene(t *testing.T) {
	items := layoutItems(t, 2, 100, ranges.New(0, 4), ranges.New(5, 1))
	items[0].Padding = .2
	items[0].Label = "<a&b>"
	items[1].Label = "x"

	v := NewVector(100, WithMargin(10), WithSimplifiedPaths())
	v.Draw(Frame{Items: items, Transform: viewport.Identity})
	scene := v.Scene()
	require.Len(t, scene.Shapes, 2)

	first := scene.Shapes[0]
	assert.Same(t, items[0].Range(), first.Range)
	assert.Equal(t, "scale(25) translate(0.5,0.5)", first.Transform)
	assert.Equal(t, "M0 0L0 0h1v1h-1", first.Path)
	assert.Equal(t, .8, first.StrokeWidth)
	require.NotNil(t, first.Label)

	var buf bytes.Buffer
	require.NoError(t, scene.WriteSVG(&buf))
	svg := buf.String()
	assert.Contains(t, svg, `width="120" height="120"`)
	assert.Contains(t, svg, `<g transform="translate(10,10)" clip-path="url(#canvas)">`)
	assert.Contains(t, svg, `stroke="#ff0000"`)
	assert.Contains(t, svg, `&lt;a&amp;b&gt;`)
	assert.Contains(t, svg, `<textPath href="#label-0"`)
	assert.Contains(t, svg, `text-anchor="middle"`)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`class="hilbert-segment"`)))
}

func TestVectorReusesShapes(t *testing.T) {
	items := layoutItems(t, 3, 80, ranges.New(0, 10))
	v := NewVector(80)

	v.Draw(Frame{Items: items, Transform: viewport.Identity})
	path := v.Scene().Shapes[0].Path

	items[0].Padding = .5
	v.Draw(Frame{Items: items, Transform: viewport.Transform{K: 2}})
	shape := v.Scene().Shapes[0]
	assert.Equal(t, path, shape.Path)
	assert.Equal(t, .5, shape.StrokeWidth)
	assert.Equal(t, viewport.Transform{K: 2}, v.Scene().Transform)

	items[0].Label = "relabelled"
	v.Draw(Frame{Items: items, Transform: viewport.Identity})
	assert.Equal(t, "relabelled", v.Scene().Shapes[0].text)
}
