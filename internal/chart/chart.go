// Package chart mounts ranges on a Hilbert curve and wires layout, viewport,
// rendering and hit-testing together.
//
// A Chart is single-threaded: every method must be called from the host's
// event loop. Work is deferred to frames requested from the Scheduler.
package chart

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/logging"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/render"
	"github.com/JackWithOneEye/hilbertchart/internal/viewport"
	"github.com/spf13/cast"
)

// wheelIdle is how long after the last wheel event a wheel zoom ends.
const wheelIdle = 150 * time.Millisecond

// SetLogger routes the chart's diagnostics to l. They are discarded by
// default.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Surface presents drawn frames.
type Surface interface {
	Present(b render.Backend)
}

type SurfaceFunc func(render.Backend)

func (f SurfaceFunc) Present(b render.Backend) { f(b) }

// Tooltip is the tooltip state at the pointer. Presenting it is up to the
// host.
type Tooltip struct {
	Visible bool
	X, Y    float64
	Value   string
	Range   string
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Chart struct {
	opts     Options
	clock    viewport.Clock
	sched    Scheduler
	curve    *hilbert.Curve
	viewport *viewport.Controller
	backend  render.Backend

	data    []*ranges.Range
	index   *ranges.Index
	layouts []hilbert.Layout
	items   []render.Item
	tooltip func(*ranges.Range) string

	surface      Surface
	mounted      bool
	framePending bool
	inFrame      bool
	inMotion     bool
	wheelEnd     time.Time

	hovered *ranges.Range
	tip     Tooltip

	onRangeClick  func(*ranges.Range)
	onRangeHover  func(*ranges.Range)
	onPointerMove func(value uint64, sx, sy float64)
	onZoom        func(viewport.Transform)
	onZoomEnd     func(viewport.Transform)
}

// New lays out opts.Data and builds the selected backend. Nothing is drawn
// before Mount.
func New(opts Options) (*Chart, error) {
	if opts.ValueFormatter == nil {
		opts.ValueFormatter = defaultValueFormatter
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = &FrameQueue{}
	}

	c := &Chart{opts: opts, clock: opts.Clock, sched: opts.Scheduler}
	curve, layouts, err := c.layout(opts.Order, opts.Width, opts.Data)
	if err != nil {
		return nil, err
	}
	c.curve = curve
	c.viewport = viewport.NewController(curve, viewport.WithClock(opts.Clock))
	c.viewport.OnChange(c.transformChanged)
	c.viewport.OnEnd(c.transformEnded)

	if opts.UseCanvas {
		c.backend = render.NewRaster(opts.Width, render.WithLODCeiling(opts.LODCeiling))
	} else {
		vopts := []render.VectorOption{render.WithMargin(opts.Margin)}
		if opts.SimplifyPaths {
			vopts = append(vopts, render.WithSimplifiedPaths())
		}
		c.backend = render.NewVector(opts.Width, vopts...)
	}

	c.setData(opts.Data, layouts)
	return c, nil
}

// Mount attaches the chart to s. The first frame is drawn on the next frame
// boundary, not synchronously.
func (c *Chart) Mount(s Surface) {
	c.surface = s
	c.mounted = true
	c.requestFrame()
}

// SetData replaces the dataset. On error the previous dataset stays.
func (c *Chart) SetData(rs []*ranges.Range) error {
	_, layouts, err := c.layout(c.curve.Order(), c.curve.Width(), rs)
	if err != nil {
		return err
	}
	c.setData(rs, layouts)
	c.requestFrame()
	return nil
}

// SetOrder relayouts every range at a new curve order.
func (c *Chart) SetOrder(order int) error {
	return c.relayout(order, c.curve.Width())
}

// SetWidth relayouts every range for a new canvas width.
func (c *Chart) SetWidth(width float64) error {
	if err := c.relayout(c.curve.Order(), width); err != nil {
		return err
	}
	c.backend.Resize(width)
	return nil
}

// FocusOn zooms so that [pos, pos+length) fills the canvas, animated over d.
func (c *Chart) FocusOn(pos, length uint64, d time.Duration) error {
	if err := c.viewport.FocusOn(pos, length, d); err != nil {
		return err
	}
	c.requestFrame()
	return nil
}

// PointerMove handles a pointer at screen point (sx, sy), relative to the
// canvas origin.
func (c *Chart) PointerMove(sx, sy float64) {
	if !c.inside(sx, sy) {
		c.PointerLeave()
		return
	}
	value := c.valueAt(sx, sy)
	if c.onPointerMove != nil {
		c.onPointerMove(value, sx, sy)
	}

	r := c.hitTest(sx, sy)
	c.setHovered(r)

	c.tip = Tooltip{X: sx, Y: sy}
	if c.opts.ShowValueTooltip {
		c.tip.Value = c.opts.ValueFormatter(value)
	}
	if c.opts.ShowRangeTooltip && r != nil {
		c.tip.Range = c.tooltip(r)
	}
	c.tip.Visible = c.tip.Value != "" || c.tip.Range != ""
}

func (c *Chart) PointerLeave() {
	c.setHovered(nil)
	c.tip = Tooltip{}
}

// Click reports the range under (sx, sy), if any, to the click observer.
func (c *Chart) Click(sx, sy float64) *ranges.Range {
	if !c.inside(sx, sy) {
		return nil
	}
	r := c.hitTest(sx, sy)
	if r != nil && c.onRangeClick != nil {
		c.onRangeClick(r)
	}
	return r
}

// Wheel zooms around (sx, sy) by a wheel delta in pixels. The zoom ends
// once the wheel has been idle for a moment.
func (c *Chart) Wheel(delta, sx, sy float64) {
	if !c.opts.EnableZoom || delta == 0 {
		return
	}
	c.viewport.ZoomBy(math.Pow(2, -delta*.002), sx, sy)
	c.wheelEnd = c.clock.Now().Add(wheelIdle)
	c.requestFrame()
}

// Drag pans by a screen delta.
func (c *Chart) Drag(dx, dy float64) {
	if !c.opts.EnableZoom {
		return
	}
	c.viewport.PanBy(dx, dy)
}

// ZoomBy zooms around (sx, sy) as one complete gesture.
func (c *Chart) ZoomBy(factor, sx, sy float64) {
	if !c.opts.EnableZoom {
		return
	}
	c.viewport.ZoomBy(factor, sx, sy)
	c.viewport.End()
}

// GestureEnd ends a drag or pinch.
func (c *Chart) GestureEnd() {
	c.viewport.End()
}

// ResetZoom returns to the whole curve.
func (c *Chart) ResetZoom() {
	c.viewport.Reset()
}

func (c *Chart) OnRangeClick(fn func(*ranges.Range)) {
	c.onRangeClick = fn
}

// OnRangeHover is called with the range under the pointer whenever it
// changes, and with nil when the pointer leaves it.
func (c *Chart) OnRangeHover(fn func(*ranges.Range)) {
	c.onRangeHover = fn
}

func (c *Chart) OnPointerMove(fn func(value uint64, sx, sy float64)) {
	c.onPointerMove = fn
}

func (c *Chart) OnZoom(fn func(viewport.Transform)) {
	c.onZoom = fn
}

func (c *Chart) OnZoomEnd(fn func(viewport.Transform)) {
	c.onZoomEnd = fn
}

func (c *Chart) Options() Options {
	return c.opts
}

func (c *Chart) Curve() *hilbert.Curve {
	return c.curve
}

func (c *Chart) Backend() render.Backend {
	return c.backend
}

func (c *Chart) Data() []*ranges.Range {
	return c.data
}

func (c *Chart) Layouts() []hilbert.Layout {
	return c.layouts
}

func (c *Chart) Items() []render.Item {
	return c.items
}

func (c *Chart) Transform() viewport.Transform {
	return c.viewport.Transform()
}

func (c *Chart) Window() viewport.Window {
	return c.viewport.Window()
}

func (c *Chart) Hovered() *ranges.Range {
	return c.hovered
}

func (c *Chart) Tooltip() Tooltip {
	return c.tip
}

// InMotion reports whether a gesture or animation is running.
func (c *Chart) InMotion() bool {
	return c.inMotion
}

// MarkerAt returns the unzoomed canvas point of a position's cell corner.
func (c *Chart) MarkerAt(pos uint64) (x, y float64, err error) {
	if pos >= c.curve.Capacity() {
		return 0, 0, fmt.Errorf("marker at %d: %w", pos, hilbert.ErrRangeOverflow)
	}
	cell := c.curve.CellAt(pos)
	cw := c.curve.CellWidth()
	return float64(cell.X) * cw, float64(cell.Y) * cw, nil
}

// hitTest picks from the raster pick buffer for large datasets and from the
// interval index otherwise.
func (c *Chart) hitTest(sx, sy float64) *ranges.Range {
	if p, ok := c.backend.(render.Picker); ok && len(c.data) > c.opts.PickThreshold {
		return p.Pick(sx, sy)
	}
	return c.index.Best(c.valueAt(sx, sy))
}

func (c *Chart) valueAt(sx, sy float64) uint64 {
	px, py := c.viewport.Transform().Invert(sx, sy)
	return c.curve.PointToValue(px, py)
}

func (c *Chart) inside(sx, sy float64) bool {
	w := c.curve.Width()
	return sx >= 0 && sy >= 0 && sx < w && sy < w
}

func (c *Chart) setHovered(r *ranges.Range) {
	if r == c.hovered {
		return
	}
	c.hovered = r
	if c.onRangeHover != nil {
		c.onRangeHover(r)
	}
}

func (c *Chart) layout(order int, width float64, rs []*ranges.Range) (*hilbert.Curve, []hilbert.Layout, error) {
	var opts []hilbert.Option
	if c.opts.Coarsen {
		opts = append(opts, hilbert.WithCoarsening())
	}
	curve, err := hilbert.NewCurve(order, width, opts...)
	if err != nil {
		return nil, nil, err
	}
	layouts, err := curve.LayoutAll(rs)
	if err != nil {
		return nil, nil, err
	}
	return curve, layouts, nil
}

func (c *Chart) relayout(order int, width float64) error {
	curve, layouts, err := c.layout(order, width, c.data)
	if err != nil {
		return err
	}
	c.curve = curve
	c.layouts = layouts
	c.resolveItems()
	c.invalidatePicks()
	c.viewport.SetCurve(curve)
	c.inMotion = false
	c.requestFrame()
	return nil
}

func (c *Chart) setData(rs []*ranges.Range, layouts []hilbert.Layout) {
	c.data = rs
	c.layouts = layouts
	c.index = ranges.NewIndex(rs)
	c.resolveItems()
	c.invalidatePicks()
	c.setHovered(nil)
}

func (c *Chart) invalidatePicks() {
	if p, ok := c.backend.(render.Picker); ok {
		p.InvalidatePicks()
	}
}

// resolveItems evaluates every accessor once for the current dataset.
func (c *Chart) resolveItems() {
	label := c.opts.Label.Resolve(func(r *ranges.Range) string {
		return cast.ToString(r.Payload["name"])
	})

	domain := make([]string, len(c.data))
	for i, r := range c.data {
		domain[i] = label(r)
	}
	scale := newOrdinalScale(Category20, domain)
	colorOf := c.opts.Color.Resolve(func(r *ranges.Range) string {
		return scale.color(label(r))
	})
	labelColorOf := c.opts.LabelColor.Resolve(func(*ranges.Range) string { return "" })
	padding := c.opts.Padding.Resolve(func(*ranges.Range) float64 { return 0 })
	paddingAbs := c.opts.PaddingAbsolute.Resolve(func(*ranges.Range) float64 { return 0 })

	vf := c.opts.ValueFormatter
	c.tooltip = c.opts.TooltipContent.Resolve(func(r *ranges.Range) string {
		span := vf(r.Start) + " - " + vf(r.End())
		if l := label(r); l != "" {
			return l + ": " + span
		}
		return span
	})

	items := make([]render.Item, len(c.layouts))
	for i, l := range c.layouts {
		r := l.Range
		it := render.Item{
			Layout:          l,
			Index:           i,
			Color:           toRGBA(colorOf(r)),
			Label:           domain[i],
			Padding:         padding(r),
			PaddingAbsolute: paddingAbs(r),
		}
		lc := labelColorOf(r)
		if lc == "" {
			lc = contrastColor(it.Color)
		}
		it.LabelColor = toRGBA(lc)
		items[i] = it
	}
	c.items = items
}

func (c *Chart) transformChanged(t viewport.Transform) {
	c.inMotion = true
	if c.onZoom != nil {
		c.onZoom(t)
	}
	c.requestFrame()
}

func (c *Chart) transformEnded(t viewport.Transform) {
	c.inMotion = false
	if c.onZoomEnd != nil {
		c.onZoomEnd(t)
	}
	c.requestFrame()
}

// requestFrame schedules at most one pending frame. Requests made while a
// frame runs are served by that frame's draw.
func (c *Chart) requestFrame() {
	if !c.mounted || c.framePending || c.inFrame {
		return
	}
	c.framePending = true
	c.sched.RequestFrame(c.frame)
}

func (c *Chart) frame(now time.Time) {
	c.framePending = false
	c.inFrame = true
	animating := c.viewport.Tick(now)
	if !c.wheelEnd.IsZero() && !now.Before(c.wheelEnd) {
		c.wheelEnd = time.Time{}
		c.viewport.End()
	}
	c.inFrame = false

	c.draw()
	if animating || !c.wheelEnd.IsZero() {
		c.requestFrame()
	}
}

func (c *Chart) draw() {
	c.backend.Draw(render.Frame{
		Items:     c.items,
		Transform: c.viewport.Transform(),
		Window:    c.viewport.Window(),
		InMotion:  c.inMotion,
	})
	if c.surface != nil {
		c.surface.Present(c.backend)
	}
}
