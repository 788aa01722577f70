// Package hilbert maps linear positions onto a Hilbert curve laid over a
// square canvas and back.
package hilbert

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
)

// MaxOrder is the deepest supported curve. Its capacity, 4^31, still fits
// a uint64 position.
const MaxOrder = 31

// MaxLayoutCells bounds the cells a set of layouts may walk.
const MaxLayoutCells = 1 << 24

// Cell is a grid coordinate, origin top-left.
type Cell struct {
	X, Y uint32
}

// Bounds is a cell-space rectangle, Max exclusive.
type Bounds struct {
	MinX, MinY, MaxX, MaxY uint32
}

func (b Bounds) Width() uint32  { return b.MaxX - b.MinX }
func (b Bounds) Height() uint32 { return b.MaxY - b.MinY }

// Layout is the geometry of one range on the curve.
type Layout struct {
	Range *ranges.Range

	// Order is the curve order the cells are expressed in. It is lower than
	// the curve order only for coarsened layouts.
	Order int

	StartCell Cell

	// CellWidth is the size of one cell in unzoomed canvas pixels.
	CellWidth float64

	// PathVertices is the walk from StartCell through every covered cell,
	// empty for single-cell ranges.
	PathVertices []Direction

	Bounds Bounds
}

// Runs returns the path with straight stretches collapsed.
func (l Layout) Runs() []Run {
	return SimplifyPath(l.PathVertices)
}

// Cells returns the number of cells covered by the layout.
func (l Layout) Cells() int {
	return len(l.PathVertices) + 1
}

type Option func(*Curve)

// WithCoarsening lays out ranges whose start and length are multiples of
// 4^r on a curve r orders coarser, so aligned blocks become single cells.
func WithCoarsening() Option {
	return func(c *Curve) {
		c.coarsen = true
	}
}

// Curve is an immutable Hilbert curve of a given order stretched over a
// square canvas of a given width.
type Curve struct {
	order   int
	width   float64
	coarsen bool
}

func NewCurve(order int, canvasWidth float64, opts ...Option) (*Curve, error) {
	if order < 0 || order > MaxOrder {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if !(canvasWidth > 0) || math.IsInf(canvasWidth, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWidth, canvasWidth)
	}
	c := &Curve{order: order, width: canvasWidth}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Curve) Order() int {
	return c.order
}

func (c *Curve) Width() float64 {
	return c.width
}

// Side returns the number of cells along one axis.
func (c *Curve) Side() uint64 {
	return 1 << c.order
}

// Capacity returns the number of addressable positions.
func (c *Curve) Capacity() uint64 {
	return 1 << (2 * c.order)
}

// CellWidth returns the pixel size of one cell at full order.
func (c *Curve) CellWidth() float64 {
	return c.width / float64(c.Side())
}

// CellAt returns the cell of position pos. Positions past the capacity wrap.
func (c *Curve) CellAt(pos uint64) Cell {
	return d2xy(c.order, pos)
}

// ValueAt returns the position of cell.
func (c *Curve) ValueAt(cell Cell) uint64 {
	return xy2d(c.order, cell)
}

// CellCenter returns the canvas point at the centre of cell.
func (c *Curve) CellCenter(cell Cell) (px, py float64) {
	cw := c.CellWidth()
	return (float64(cell.X) + .5) * cw, (float64(cell.Y) + .5) * cw
}

// PointToValue returns the position whose cell contains the unzoomed canvas
// point (px, py). Points on or beyond the canvas edges resolve to the
// nearest edge cell.
func (c *Curve) PointToValue(px, py float64) uint64 {
	cw := c.CellWidth()
	return xy2d(c.order, Cell{X: c.clampCell(px / cw), Y: c.clampCell(py / cw)})
}

func (c *Curve) clampCell(v float64) uint32 {
	last := float64(c.Side() - 1)
	switch {
	case !(v > 0):
		return 0
	case v >= last:
		return uint32(last)
	}
	return uint32(math.Floor(v))
}

// Layout computes the geometry of r. It is a pure function of r's bounds and
// the curve, so repeated calls yield identical layouts.
func (c *Curve) Layout(r *ranges.Range) (Layout, error) {
	if err := c.Validate(r); err != nil {
		return Layout{}, err
	}
	if n := c.Cells(r); n > MaxLayoutCells {
		return Layout{}, fmt.Errorf("%w: %s walks %d cells", ErrLayoutTooLarge, r, n)
	}

	order, start, length := c.order, r.Start, r.Length
	if c.coarsen {
		shift := min(coarseSteps(start), coarseSteps(length), order)
		order -= shift
		start >>= 2 * shift
		length >>= 2 * shift
	}

	first := d2xy(order, start)
	l := Layout{
		Range:     r,
		Order:     order,
		StartCell: first,
		CellWidth: c.width / float64(uint64(1)<<order),
		Bounds:    Bounds{MinX: first.X, MinY: first.Y, MaxX: first.X + 1, MaxY: first.Y + 1},
	}
	if length > 1 {
		l.PathVertices = make([]Direction, 0, length-1)
	}
	prev := first
	for pos := start + 1; pos < start+length; pos++ {
		cur := d2xy(order, pos)
		l.PathVertices = append(l.PathVertices, directionBetween(prev, cur))
		l.Bounds.MinX = min(l.Bounds.MinX, cur.X)
		l.Bounds.MinY = min(l.Bounds.MinY, cur.Y)
		l.Bounds.MaxX = max(l.Bounds.MaxX, cur.X+1)
		l.Bounds.MaxY = max(l.Bounds.MaxY, cur.Y+1)
		prev = cur
	}
	return l, nil
}

// Validate reports whether r can be laid out on the curve.
func (c *Curve) Validate(r *ranges.Range) error {
	if r.Length == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRange, r)
	}
	end, carry := bits.Add64(r.Start, r.Length, 0)
	if carry != 0 || end > c.Capacity() {
		return fmt.Errorf("%w: %s past %d", ErrRangeOverflow, r, c.Capacity())
	}
	return nil
}

// Cells returns the number of cells the layout of a valid r walks.
func (c *Curve) Cells(r *ranges.Range) uint64 {
	if !c.coarsen {
		return r.Length
	}
	shift := min(coarseSteps(r.Start), coarseSteps(r.Length), c.order)
	return r.Length >> (2 * shift)
}

// CheckBudget reports whether rs fit the curve and walk at most
// MaxLayoutCells cells together.
func (c *Curve) CheckBudget(rs []*ranges.Range) error {
	var total uint64
	for i, r := range rs {
		if err := c.Validate(r); err != nil {
			return fmt.Errorf("range %d: %w", i, err)
		}
		total += c.Cells(r)
		if total > MaxLayoutCells {
			return fmt.Errorf("%w: more than %d cells", ErrLayoutTooLarge, MaxLayoutCells)
		}
	}
	return nil
}

// LayoutAll lays out every range into a fresh slice. Nothing is returned
// unless every range is valid.
func (c *Curve) LayoutAll(rs []*ranges.Range) ([]Layout, error) {
	if err := c.CheckBudget(rs); err != nil {
		return nil, err
	}
	out := make([]Layout, len(rs))
	for i, r := range rs {
		l, err := c.Layout(r)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		out[i] = l
	}
	return out, nil
}

// coarseSteps returns how many times v divides by four.
func coarseSteps(v uint64) int {
	if v == 0 {
		return MaxOrder
	}
	return bits.TrailingZeros64(v) / 2
}

func d2xy(order int, d uint64) Cell {
	var x, y uint64
	t := d
	for s := uint64(1); s < uint64(1)<<order; s <<= 1 {
		rx := 1 & (t >> 1)
		ry := 1 & (t ^ rx)
		x, y = rot(s, x, y, rx, ry)
		x += s * rx
		y += s * ry
		t >>= 2
	}
	return Cell{X: uint32(x), Y: uint32(y)}
}

func xy2d(order int, cell Cell) uint64 {
	n := uint64(1) << order
	x, y := uint64(cell.X), uint64(cell.Y)
	var d uint64
	for s := n >> 1; s > 0; s >>= 1 {
		var rx, ry uint64
		if x&s != 0 {
			rx = 1
		}
		if y&s != 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		x, y = rot(n, x, y, rx, ry)
	}
	return d
}

func rot(n, x, y, rx, ry uint64) (uint64, uint64) {
	if ry == 0 {
		if rx == 1 {
			x = n - 1 - x
			y = n - 1 - y
		}
		x, y = y, x
	}
	return x, y
}
