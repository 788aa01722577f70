package chart

import (
	"testing"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/render"
	"github.com/JackWithOneEye/hilbertchart/internal/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type harness struct {
	chart     *Chart
	clock     *fakeClock
	frames    *FrameQueue
	presented int
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{clock: &fakeClock{now: time.Unix(1_700_000_000, 0)}, frames: &FrameQueue{}}
	opts.Clock = h.clock
	opts.Scheduler = h.frames
	c, err := New(opts)
	require.NoError(t, err)
	h.chart = c
	return h
}

func (h *harness) mount() {
	h.chart.Mount(SurfaceFunc(func(render.Backend) { h.presented++ }))
}

func (h *harness) flush() int {
	return h.frames.Flush(h.clock.now)
}

func (h *harness) advance(d time.Duration) int {
	h.clock.now = h.clock.now.Add(d)
	return h.flush()
}

func baseOptions(order int, width float64, data ...*ranges.Range) Options {
	o := DefaultOptions()
	o.Order = order
	o.Width = width
	o.Data = data
	return o
}

func center(t *testing.T, c *Chart, pos uint64) (float64, float64) {
	t.Helper()
	return c.Curve().CellCenter(c.Curve().CellAt(pos))
}

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New(baseOptions(-1, 100))
	assert.ErrorIs(t, err, hilbert.ErrInvalidOrder)
	_, err = New(baseOptions(2, 0))
	assert.ErrorIs(t, err, hilbert.ErrInvalidWidth)
	_, err = New(baseOptions(2, 100, ranges.New(10, 10)))
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)
}

func TestMountDefersFirstFrame(t *testing.T) {
	h := newHarness(t, baseOptions(4, 256, ranges.New(0, 10), ranges.New(20, 1)))
	assert.Zero(t, h.frames.Pending())

	h.mount()
	assert.Zero(t, h.presented)
	assert.Equal(t, 1, h.frames.Pending())

	assert.Equal(t, 1, h.flush())
	assert.Equal(t, 1, h.presented)

	vec, ok := h.chart.Backend().(*render.Vector)
	require.True(t, ok)
	assert.Len(t, vec.Scene().Shapes, 2)
	assert.Equal(t, float64(DefaultMargin), vec.Scene().Margin)
}

func TestRedrawsAreCoalesced(t *testing.T) {
	h := newHarness(t, baseOptions(4, 256, ranges.New(0, 10)))
	h.mount()
	h.flush()

	h.chart.ZoomBy(2, 0, 0)
	h.chart.Drag(-10, -10)
	h.chart.Drag(-10, -10)
	require.NoError(t, h.chart.SetData([]*ranges.Range{ranges.New(1, 1)}))
	assert.Equal(t, 1, h.frames.Pending())
	h.flush()
	assert.Equal(t, 2, h.presented)
	assert.Zero(t, h.frames.Pending())
}

func TestHoverPrefersNarrowestRange(t *testing.T) {
	wide := ranges.New(0, 100)
	narrow := ranges.New(10, 5)
	h := newHarness(t, baseOptions(4, 256, wide, narrow))

	var hovers []*ranges.Range
	var moved []uint64
	h.chart.OnRangeHover(func(r *ranges.Range) { hovers = append(hovers, r) })
	h.chart.OnPointerMove(func(v uint64, _, _ float64) { moved = append(moved, v) })

	x, y := center(t, h.chart, 12)
	h.chart.PointerMove(x, y)
	assert.Same(t, narrow, h.chart.Hovered())
	assert.Equal(t, []uint64{12}, moved)

	tip := h.chart.Tooltip()
	assert.True(t, tip.Visible)
	assert.Equal(t, "12", tip.Value)
	assert.Equal(t, "10 - 15", tip.Range)

	// same range again does not re-notify
	h.chart.PointerMove(x+1, y)
	x, y = center(t, h.chart, 50)
	h.chart.PointerMove(x, y)
	assert.Same(t, wide, h.chart.Hovered())

	h.chart.PointerMove(-1, 5)
	assert.Nil(t, h.chart.Hovered())
	assert.False(t, h.chart.Tooltip().Visible)

	require.Len(t, hovers, 3)
	assert.Same(t, narrow, hovers[0])
	assert.Same(t, wide, hovers[1])
	assert.Nil(t, hovers[2])
}

func TestTooltipToggles(t *testing.T) {
	r := &ranges.Range{Start: 3, Length: 1, Payload: map[string]any{"name": "host"}}
	opts := baseOptions(2, 100, r)
	opts.ShowValueTooltip = false
	opts.ValueFormatter = func(v uint64) string { return "#" + string(rune('0'+v)) }
	h := newHarness(t, opts)

	x, y := center(t, h.chart, 3)
	h.chart.PointerMove(x, y)
	tip := h.chart.Tooltip()
	assert.Empty(t, tip.Value)
	assert.Equal(t, "host: #3 - #4", tip.Range)

	opts.ShowRangeTooltip = false
	h = newHarness(t, opts)
	h.chart.PointerMove(x, y)
	assert.False(t, h.chart.Tooltip().Visible)

	opts.ShowRangeTooltip = true
	opts.TooltipContent = Const("custom")
	h = newHarness(t, opts)
	h.chart.PointerMove(x, y)
	assert.Equal(t, "custom", h.chart.Tooltip().Range)
}

func TestClick(t *testing.T) {
	r := ranges.New(4, 4)
	h := newHarness(t, baseOptions(2, 100, r))
	var clicked []*ranges.Range
	h.chart.OnRangeClick(func(r *ranges.Range) { clicked = append(clicked, r) })

	x, y := center(t, h.chart, 5)
	assert.Same(t, r, h.chart.Click(x, y))
	x, y = center(t, h.chart, 0)
	assert.Nil(t, h.chart.Click(x, y))
	assert.Nil(t, h.chart.Click(500, 500))
	assert.Equal(t, []*ranges.Range{r}, clicked)
}

func TestRasterPickingAboveThreshold(t *testing.T) {
	r := ranges.New(0, 1)
	opts := baseOptions(2, 8, r)
	opts.UseCanvas = true
	opts.PickThreshold = 0
	h := newHarness(t, opts)

	assert.Nil(t, h.chart.Click(.5, .5), "nothing drawn yet")
	h.mount()
	h.flush()
	assert.Same(t, r, h.chart.Click(.5, .5))

	opts.PickThreshold = 10
	h = newHarness(t, opts)
	assert.Same(t, r, h.chart.Click(.5, .5), "small datasets use the interval index")
}

func TestRasterPickingAfterDataChange(t *testing.T) {
	old := ranges.New(0, 1)
	opts := baseOptions(2, 8, old)
	opts.UseCanvas = true
	opts.PickThreshold = 0
	h := newHarness(t, opts)
	h.mount()
	h.flush()
	require.Same(t, old, h.chart.Click(.5, .5))

	moved := ranges.New(15, 1)
	require.NoError(t, h.chart.SetData([]*ranges.Range{moved}))
	assert.Nil(t, h.chart.Click(.5, .5), "removed ranges are not picked before the next frame")

	h.flush()
	assert.Nil(t, h.chart.Click(.5, .5))
	assert.Same(t, moved, h.chart.Click(center(t, h.chart, 15)))

	x, y := center(t, h.chart, 15)
	require.NoError(t, h.chart.SetOrder(3))
	assert.Nil(t, h.chart.Click(x, y), "picks of the old layout are dropped")
	h.flush()
	assert.Same(t, moved, h.chart.Click(center(t, h.chart, 15)))
}

func TestFocusOnAnimation(t *testing.T) {
	h := newHarness(t, baseOptions(4, 256, ranges.New(0, 4)))
	h.mount()
	h.flush()

	var zooms, ends []viewport.Transform
	h.chart.OnZoom(func(tr viewport.Transform) { zooms = append(zooms, tr) })
	h.chart.OnZoomEnd(func(tr viewport.Transform) { ends = append(ends, tr) })

	require.NoError(t, h.chart.FocusOn(0, 4, time.Second))
	assert.Equal(t, 1, h.frames.Pending())

	h.advance(500 * time.Millisecond)
	assert.True(t, h.chart.InMotion())
	assert.Len(t, zooms, 1)
	assert.Empty(t, ends)
	assert.Equal(t, 1, h.frames.Pending())

	h.advance(time.Second)
	assert.False(t, h.chart.InMotion())
	require.Len(t, ends, 1)
	assert.Equal(t, 8.0, ends[0].K)
	assert.Equal(t, ends[0], h.chart.Transform())
	assert.Zero(t, h.frames.Pending())

	assert.ErrorIs(t, h.chart.FocusOn(250, 10, 0), hilbert.ErrRangeOverflow)
}

func TestFocusOnImmediate(t *testing.T) {
	h := newHarness(t, baseOptions(4, 256, ranges.New(0, 4)))
	ended := 0
	h.chart.OnZoomEnd(func(viewport.Transform) { ended++ })

	require.NoError(t, h.chart.FocusOn(37, 1, 0))
	assert.Equal(t, 16.0, h.chart.Transform().K)
	assert.Equal(t, 1, ended)
	assert.False(t, h.chart.InMotion())
}

func TestWheelZoomEndsWhenIdle(t *testing.T) {
	h := newHarness(t, baseOptions(4, 256, ranges.New(0, 4)))
	h.mount()
	h.flush()
	ended := 0
	h.chart.OnZoomEnd(func(viewport.Transform) { ended++ })

	h.chart.Wheel(-500, 128, 128)
	assert.InDelta(t, 2, h.chart.Transform().K, 1e-9)
	assert.True(t, h.chart.InMotion())

	h.flush()
	assert.Zero(t, ended)
	assert.Equal(t, 1, h.frames.Pending())

	h.advance(200 * time.Millisecond)
	assert.Equal(t, 1, ended)
	assert.False(t, h.chart.InMotion())
	assert.Zero(t, h.frames.Pending())
}

func TestZoomDisabled(t *testing.T) {
	opts := baseOptions(4, 256, ranges.New(0, 4))
	opts.EnableZoom = false
	h := newHarness(t, opts)

	h.chart.Wheel(-500, 10, 10)
	h.chart.ZoomBy(4, 10, 10)
	h.chart.Drag(-50, -50)
	assert.Equal(t, viewport.Identity, h.chart.Transform())

	require.NoError(t, h.chart.FocusOn(0, 4, 0))
	assert.Equal(t, 8.0, h.chart.Transform().K)
}

func TestSetDataKeepsStateOnError(t *testing.T) {
	first := ranges.New(0, 4)
	h := newHarness(t, baseOptions(2, 100, first))

	err := h.chart.SetData([]*ranges.Range{ranges.New(10, 10)})
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)
	assert.Equal(t, []*ranges.Range{first}, h.chart.Data())

	err = h.chart.SetData([]*ranges.Range{ranges.New(0, 0)})
	assert.ErrorIs(t, err, hilbert.ErrEmptyRange)
	assert.Len(t, h.chart.Items(), 1)
}

func TestSetOrderRelayouts(t *testing.T) {
	h := newHarness(t, baseOptions(4, 256, ranges.New(0, 4)))
	h.chart.ZoomBy(16, 0, 0)
	assert.Equal(t, 16.0, h.chart.Transform().K)

	require.NoError(t, h.chart.SetOrder(2))
	assert.Equal(t, 4.0, h.chart.Transform().K)
	assert.Equal(t, 64.0, h.chart.Layouts()[0].CellWidth)
	assert.False(t, h.chart.InMotion())

	assert.ErrorIs(t, h.chart.SetOrder(0), hilbert.ErrRangeOverflow)
	assert.Equal(t, 2, h.chart.Curve().Order())

	require.NoError(t, h.chart.SetWidth(512))
	assert.Equal(t, 128.0, h.chart.Layouts()[0].CellWidth)
	assert.ErrorIs(t, h.chart.SetWidth(-1), hilbert.ErrInvalidWidth)
}

func TestResolvedItems(t *testing.T) {
	a1 := &ranges.Range{Start: 0, Length: 1, Payload: map[string]any{"name": "a"}}
	b := &ranges.Range{Start: 1, Length: 1, Payload: map[string]any{"name": "b", "pad": 0.5}}
	a2 := &ranges.Range{Start: 2, Length: 1, Payload: map[string]any{"name": "a"}}
	opts := baseOptions(2, 100, a1, b, a2)
	opts.Padding = Field[float64]("pad")
	opts.PaddingAbsolute = Const(2.0)
	h := newHarness(t, opts)

	items := h.chart.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Label)
	assert.Equal(t, toRGBA(Category20[0]), items[0].Color)
	assert.Equal(t, toRGBA(Category20[1]), items[1].Color)
	assert.Equal(t, items[0].Color, items[2].Color)
	assert.Equal(t, toRGBA("#ffffff"), items[0].LabelColor)
	assert.Equal(t, toRGBA("#000000"), items[1].LabelColor)
	assert.Equal(t, 0.0, items[0].Padding)
	assert.Equal(t, .5, items[1].Padding)
	assert.Equal(t, 2.0, items[2].PaddingAbsolute)

	opts.Color = Const("red")
	opts.LabelColor = Func(func(*ranges.Range) string { return "#00ff00" })
	opts.Label = Const("")
	h = newHarness(t, opts)
	items = h.chart.Items()
	assert.Equal(t, toRGBA("red"), items[1].Color)
	assert.Equal(t, toRGBA("#00ff00"), items[1].LabelColor)
	assert.Empty(t, items[1].Label)
}

func TestAxes(t *testing.T) {
	h := newHarness(t, baseOptions(2, 8))
	axes := h.chart.Axes()
	require.Len(t, axes, 4)
	for _, a := range axes {
		require.Len(t, a.Ticks, AxisTicks)
		assert.Equal(t, 3.0, a.Ticks[3].Offset)
	}

	curve := h.chart.Curve()
	valueAt := func(x, y uint32) uint64 { return curve.ValueAt(hilbert.Cell{X: x, Y: y}) }

	assert.Equal(t, AxisLeft, axes[0].Side)
	assert.Equal(t, valueAt(0, 0), axes[0].Ticks[0].Value)
	assert.Equal(t, valueAt(3, 0), axes[1].Ticks[0].Value)
	assert.Equal(t, uint64(15), axes[1].Ticks[0].Value)
	assert.Equal(t, valueAt(1, 0), axes[2].Ticks[2].Value)
	assert.Equal(t, uint64(1), axes[2].Ticks[2].Value)
	assert.Equal(t, valueAt(0, 3), axes[3].Ticks[0].Value)
	assert.Equal(t, "5", axes[3].Ticks[0].Label)

	// the right edge of the zoomed window runs through column 1
	h.chart.ZoomBy(2, 0, 0)
	axes = h.chart.Axes()
	assert.Equal(t, valueAt(1, 0), axes[1].Ticks[0].Value)
	assert.Equal(t, 3.0, axes[1].Ticks[3].Offset)
}

func TestMarkerAt(t *testing.T) {
	h := newHarness(t, baseOptions(2, 8))
	x, y, err := h.chart.MarkerAt(5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 6.0, y)

	_, _, err = h.chart.MarkerAt(16)
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)
}
