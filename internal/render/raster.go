package render

import (
	"image"
	"image/color"
	"math"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/picking"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// DefaultLODCeiling is the number of visible items above which an in-motion
// frame is thinned out.
const DefaultLODCeiling = 5000

// Stats describes the last raster frame.
type Stats struct {
	Visible       int
	Drawn         int
	PickRefreshed bool
}

type RasterOption func(*Raster)

func WithLODCeiling(n int) RasterOption {
	return func(r *Raster) {
		r.lodCeiling = n
	}
}

// WithFace sets the label font. A nil face disables labels.
func WithFace(face font.Face) RasterOption {
	return func(r *Raster) {
		r.face = face
	}
}

type Raster struct {
	img        *image.RGBA
	z          *vector.Rasterizer
	picks      *picking.Index
	pickBuf    *picking.Buffer
	pickHint   int
	lodCeiling int
	face       font.Face
	stats      Stats
}

func NewRaster(width float64, opts ...RasterOption) *Raster {
	r := &Raster{
		z:          &vector.Rasterizer{},
		picks:      picking.NewIndex(0),
		lodCeiling: DefaultLODCeiling,
		face:       basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Resize(width)
	return r
}

func (r *Raster) Kind() Kind {
	return KindRaster
}

// Resize reallocates the canvas. Picking resolves nothing until the next
// settled frame.
func (r *Raster) Resize(width float64) {
	n := max(1, int(math.Ceil(width)))
	r.img = image.NewRGBA(image.Rect(0, 0, n, n))
	r.pickBuf = picking.NewBuffer(n, n)
}

func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) Stats() Stats {
	return r.stats
}

// Draw paints the visible items. In motion, crowded frames are thinned out
// with SelectLOD and the pick buffer keeps the last settled frame.
func (r *Raster) Draw(f Frame) {
	visible := Visible(f.Items, f.Window)
	drawn := visible
	crowded := r.lodCeiling > 0 && len(visible) > r.lodCeiling
	if f.InMotion && crowded {
		drawn = SelectLOD(visible, r.lodCeiling)
	}
	r.stats = Stats{Visible: len(visible), Drawn: len(drawn)}

	clear(r.img.Pix)
	m := f.Transform.Aff3()
	for i := range drawn {
		r.fill(&drawn[i], m, f.Transform.K, drawn[i].Color)
	}
	if !f.InMotion && r.face != nil {
		for i := range drawn {
			r.label(&drawn[i], m)
		}
	}

	if f.InMotion && crowded {
		return
	}
	r.refreshPicks(len(f.Items), drawn, m, f.Transform.K)
}

// Pick resolves a screen point against the last refreshed pick buffer.
func (r *Raster) Pick(sx, sy float64) *ranges.Range {
	return r.picks.Pick(r.pickBuf, int(math.Floor(sx)), int(math.Floor(sy)))
}

// InvalidatePicks makes Pick resolve nothing until picks are refreshed. The
// buffer still holds colours of ranges that may no longer be charted.
func (r *Raster) InvalidatePicks() {
	r.picks.Reset()
	r.stats.PickRefreshed = false
}

func (r *Raster) refreshPicks(total int, drawn []Item, m f64.Aff3, k float64) {
	if total != r.pickHint {
		r.pickHint = total
		r.picks.Resize(total)
	} else {
		r.picks.Reset()
	}
	r.pickBuf.Begin(r.picks)
	for i := range drawn {
		c, ok := r.picks.Register(drawn[i].Range())
		if !ok {
			break
		}
		r.fillPick(&drawn[i], m, k, c)
	}
	r.stats.PickRefreshed = true
}

// fill rasterizes the item with anti-aliasing, clipped to its screen bounds.
func (r *Raster) fill(it *Item, m f64.Aff3, k float64, c color.RGBA) {
	bb := screenBounds(it, m).Intersect(r.img.Rect)
	if bb.Empty() {
		return
	}
	ox, oy := float64(bb.Min.X), float64(bb.Min.Y)
	w, h := float64(bb.Dx()), float64(bb.Dy())
	r.z.Reset(bb.Dx(), bb.Dy())
	eachRect(it, k, func(x0, y0, x1, y1 float64) {
		sx0, sy0 := apply(m, x0, y0)
		sx1, sy1 := apply(m, x1, y1)
		sx0, sx1 = max(sx0-ox, 0), min(sx1-ox, w)
		sy0, sy1 = max(sy0-oy, 0), min(sy1-oy, h)
		if sx0 >= sx1 || sy0 >= sy1 {
			return
		}
		r.z.MoveTo(float32(sx0), float32(sy0))
		r.z.LineTo(float32(sx1), float32(sy0))
		r.z.LineTo(float32(sx1), float32(sy1))
		r.z.LineTo(float32(sx0), float32(sy1))
		r.z.ClosePath()
	})
	r.z.Draw(r.img, bb, image.NewUniform(c), image.Point{})
}

// fillPick paints the item's id without blending. Every rectangle covers at
// least one pixel so thin cells stay pickable.
func (r *Raster) fillPick(it *Item, m f64.Aff3, k float64, c color.RGBA) {
	dst := r.pickBuf.Image()
	src := image.NewUniform(c)
	eachRect(it, k, func(x0, y0, x1, y1 float64) {
		sx0, sy0 := apply(m, x0, y0)
		sx1, sy1 := apply(m, x1, y1)
		px0, py0 := int(math.Round(sx0)), int(math.Round(sy0))
		px1, py1 := max(int(math.Round(sx1)), px0+1), max(int(math.Round(sy1)), py0+1)
		rect := image.Rect(px0, py0, px1, py1).Intersect(dst.Rect)
		if rect.Empty() {
			return
		}
		draw.Draw(dst, rect, src, image.Point{}, draw.Src)
	})
}

func (r *Raster) label(it *Item, m f64.Aff3) {
	if _, ok := FitLabel(it.Label, it.Layout, false); !ok {
		return
	}
	bb := screenBounds(it, m)
	width := font.MeasureString(r.face, it.Label).Ceil()
	metrics := r.face.Metrics()
	height := metrics.Height.Ceil()
	if float64(width) > .95*float64(bb.Dx()) || height > bb.Dy() {
		return
	}
	cx, cy := (bb.Min.X+bb.Max.X)/2, (bb.Min.Y+bb.Max.Y)/2
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(it.LabelColor),
		Face: r.face,
		Dot:  fixed.P(cx-width/2, cy+(metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2),
	}
	d.DrawString(it.Label)
}

// eachRect calls fn with the canvas rectangles covering the item's stroke:
// one per straight run, or the start cell alone.
func eachRect(it *Item, k float64, fn func(x0, y0, x1, y1 float64)) {
	l := &it.Layout
	cw := l.CellWidth
	inset := (1 - it.StrokeWidth(k)) / 2
	emit := func(ax, ay, bx, by int64) {
		fn(
			(float64(min(ax, bx))+inset)*cw,
			(float64(min(ay, by))+inset)*cw,
			(float64(max(ax, bx)+1)-inset)*cw,
			(float64(max(ay, by)+1)-inset)*cw,
		)
	}

	x, y := int64(l.StartCell.X), int64(l.StartCell.Y)
	runs := hilbert.SimplifyPath(l.PathVertices)
	if len(runs) == 0 {
		emit(x, y, x, y)
		return
	}
	for _, run := range runs {
		dx, dy := run.Dir.Delta()
		nx, ny := x+int64(dx*run.Steps), y+int64(dy*run.Steps)
		emit(x, y, nx, ny)
		x, y = nx, ny
	}
}

func screenBounds(it *Item, m f64.Aff3) image.Rectangle {
	x0, y0, x1, y1 := it.canvasBounds()
	sx0, sy0 := apply(m, x0, y0)
	sx1, sy1 := apply(m, x1, y1)
	return image.Rect(
		int(math.Floor(sx0)), int(math.Floor(sy0)),
		int(math.Ceil(sx1)), int(math.Ceil(sy1)),
	)
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
