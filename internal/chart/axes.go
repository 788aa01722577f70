package chart

// AxisTicks is the number of ticks per axis.
const AxisTicks = 8

type AxisSide uint8

const (
	AxisLeft AxisSide = iota
	AxisRight
	AxisTop
	AxisBottom
)

func (s AxisSide) String() string {
	switch s {
	case AxisLeft:
		return "left"
	case AxisRight:
		return "right"
	case AxisTop:
		return "top"
	default:
		return "bottom"
	}
}

// Tick is one axis tick. Offset is its screen distance from the canvas
// origin along the axis.
type Tick struct {
	Offset float64
	Value  uint64
	Label  string
}

type Axis struct {
	Side  AxisSide
	Ticks []Tick
}

// Axes returns the four axes of the current zoom window. Each tick shows the
// value of the curve cell at the window edge next to it; the right and
// bottom axes read the last cell inside the window.
func (c *Chart) Axes() []Axis {
	win := c.viewport.Window()
	w := c.curve.Width()
	cw := c.curve.CellWidth()
	step := win.Width() / AxisTicks

	axes := []Axis{{Side: AxisLeft}, {Side: AxisRight}, {Side: AxisTop}, {Side: AxisBottom}}
	for i := range AxisTicks {
		offset := float64(i) * w / AxisTicks
		along := float64(i) * step
		points := [4][2]float64{
			{win.X0, win.Y0 + along},
			{win.X1 - cw, win.Y0 + along},
			{win.X0 + along, win.Y0},
			{win.X0 + along, win.Y1 - cw},
		}
		for a, p := range points {
			v := c.curve.PointToValue(p[0], p[1])
			axes[a].Ticks = append(axes[a].Ticks, Tick{
				Offset: offset,
				Value:  v,
				Label:  c.opts.ValueFormatter(v),
			})
		}
	}
	return axes
}
