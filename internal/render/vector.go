package render

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/viewport"
)

// Shape is one range of a vector scene. Path and Label are in cell units;
// Transform places them on the canvas.
type Shape struct {
	Range *ranges.Range
	Index int

	Path        string
	Transform   string
	Stroke      color.RGBA
	StrokeWidth float64

	Label      *Label
	LabelColor color.RGBA

	text string
}

// Scene is the retained output of the vector backend.
type Scene struct {
	Width     float64
	Margin    float64
	Transform viewport.Transform
	Shapes    []Shape
}

type VectorOption func(*Vector)

// WithSimplifiedPaths collapses straight runs into single path commands.
func WithSimplifiedPaths() VectorOption {
	return func(v *Vector) {
		v.simplify = true
	}
}

// WithMargin sets the margin around the canvas in written documents.
func WithMargin(margin float64) VectorOption {
	return func(v *Vector) {
		v.margin = margin
	}
}

type Vector struct {
	width    float64
	margin   float64
	simplify bool
	scene    Scene
	shapes   map[*ranges.Range]Shape
}

func NewVector(width float64, opts ...VectorOption) *Vector {
	v := &Vector{width: width, shapes: map[*ranges.Range]Shape{}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Vector) Kind() Kind {
	return KindVector
}

func (v *Vector) Resize(width float64) {
	v.width = width
}

// Draw rebuilds the scene. Shapes of ranges whose layout is unchanged are
// reused; the stroke width follows the zoom.
func (v *Vector) Draw(f Frame) {
	next := make(map[*ranges.Range]Shape, len(f.Items))
	shapes := make([]Shape, 0, len(f.Items))
	for i := range f.Items {
		it := &f.Items[i]
		s, ok := v.shapes[it.Range()]
		if !ok || s.text != it.Label || s.Index != it.Index || s.Transform != cellTransform(it.Layout) {
			s = v.shape(it)
		}
		s.Stroke = it.Color
		s.LabelColor = it.LabelColor
		s.StrokeWidth = round(it.StrokeWidth(f.Transform.K), 4)
		next[it.Range()] = s
		shapes = append(shapes, s)
	}
	v.shapes = next
	v.scene = Scene{Width: v.width, Margin: v.margin, Transform: f.Transform, Shapes: shapes}
}

func (v *Vector) Scene() Scene {
	return v.scene
}

func (v *Vector) shape(it *Item) Shape {
	s := Shape{
		Range:     it.Range(),
		Index:     it.Index,
		Path:      pathData(0, 0, it.Layout.PathVertices, v.simplify),
		Transform: cellTransform(it.Layout),
		text:      it.Label,
	}
	if lbl, ok := FitLabel(it.Label, it.Layout, v.simplify); ok {
		s.Label = &lbl
	}
	return s
}

func cellTransform(l hilbert.Layout) string {
	return "scale(" + ftoa(l.CellWidth) + ") translate(" +
		ftoa(float64(l.StartCell.X)+.5) + "," + ftoa(float64(l.StartCell.Y)+.5) + ")"
}

// pathData returns SVG path data walking dirs from (x, y). The degenerate
// first segment keeps single-cell paths visible with square caps.
func pathData(x, y int, dirs []hilbert.Direction, simplify bool) string {
	var sb strings.Builder
	origin := strconv.Itoa(x) + " " + strconv.Itoa(y)
	sb.WriteString("M" + origin + "L" + origin)
	if simplify {
		for _, r := range hilbert.SimplifyPath(dirs) {
			writeStep(&sb, r.Dir, r.Steps)
		}
		return sb.String()
	}
	for _, d := range dirs {
		writeStep(&sb, d, 1)
	}
	return sb.String()
}

func writeStep(sb *strings.Builder, d hilbert.Direction, n int) {
	dx, dy := d.Delta()
	if dx != 0 {
		sb.WriteString("h" + strconv.Itoa(dx*n))
		return
	}
	sb.WriteString("v" + strconv.Itoa(dy*n))
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSVG writes the scene as a standalone SVG document.
func (s Scene) WriteSVG(w io.Writer) error {
	var sb strings.Builder
	size := ftoa(s.Width + 2*s.Margin)
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s">`, size, size)
	sb.WriteString("<defs>")
	fmt.Fprintf(&sb, `<clipPath id="canvas"><rect width="%s" height="%s"/></clipPath>`, ftoa(s.Width), ftoa(s.Width))
	for i, sh := range s.Shapes {
		if sh.Label != nil && sh.Label.Path != "" {
			fmt.Fprintf(&sb, `<path id="label-%d" d="%s"/>`, i, sh.Label.Path)
		}
	}
	sb.WriteString("</defs>")
	fmt.Fprintf(&sb, `<g transform="translate(%s,%s)" clip-path="url(#canvas)">`, ftoa(s.Margin), ftoa(s.Margin))
	fmt.Fprintf(&sb, `<g transform="translate(%s,%s) scale(%s)">`, ftoa(s.Transform.X), ftoa(s.Transform.Y), ftoa(s.Transform.K))
	for i, sh := range s.Shapes {
		fmt.Fprintf(&sb, `<g class="hilbert-segment" transform="%s">`, sh.Transform)
		fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="square" stroke-linejoin="miter"/>`,
			sh.Path, Hex(sh.Stroke), ftoa(sh.StrokeWidth))
		if sh.Label != nil {
			writeLabel(&sb, i, sh)
		}
		sb.WriteString("</g>")
	}
	sb.WriteString("</g></g></svg>")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeLabel(sb *strings.Builder, i int, sh Shape) {
	l := sh.Label
	fmt.Fprintf(sb, `<text dominant-baseline="middle" font-size="%s" fill="%s"`, ftoa(round(l.FontSize, 4)), Hex(sh.LabelColor))
	if l.Path == "" {
		fmt.Fprintf(sb, ` text-anchor="middle" textLength="%s" lengthAdjust="spacingAndGlyphs">`, ftoa(round(l.TextLength, 4)))
		xml.EscapeText(sb, []byte(l.Text))
		sb.WriteString("</text>")
		return
	}
	fmt.Fprintf(sb, `><textPath href="#label-%d" textLength="%s" startOffset="%s%%">`, i, ftoa(round(l.TextLength, 4)), ftoa(round(l.StartOffset, 4)))
	xml.EscapeText(sb, []byte(l.Text))
	sb.WriteString("</textPath></text>")
}
