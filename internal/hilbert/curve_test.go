package hilbert

import (
	"fmt"
	"testing"

	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCurve(t *testing.T, order int, width float64, opts ...Option) *Curve {
	t.Helper()
	c, err := NewCurve(order, width, opts...)
	require.NoError(t, err)
	return c
}

func TestNewCurveRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		order int
		width float64
		err   error
	}{
		{"negative order", -1, 100, ErrInvalidOrder},
		{"order too deep", MaxOrder + 1, 100, ErrInvalidOrder},
		{"zero width", 3, 0, ErrInvalidWidth},
		{"negative width", 3, -4, ErrInvalidWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurve(tt.order, tt.width)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	c := mustCurve(t, 0, 10)
	assert.Equal(t, uint64(1), c.Capacity())
	assert.Equal(t, Cell{}, c.CellAt(0))
}

func TestSingleCellRoundTrip(t *testing.T) {
	for order := 0; order <= 6; order++ {
		t.Run(fmt.Sprintf("order %d", order), func(t *testing.T) {
			c := mustCurve(t, order, 300)
			side := uint32(c.Side())
			seen := make(map[Cell]bool)
			for p := range c.Capacity() {
				l, err := c.Layout(ranges.New(p, 1))
				require.NoError(t, err)
				require.Less(t, l.StartCell.X, side)
				require.Less(t, l.StartCell.Y, side)
				require.Empty(t, l.PathVertices)
				require.False(t, seen[l.StartCell], "cell visited twice")
				seen[l.StartCell] = true

				px, py := c.CellCenter(l.StartCell)
				require.Equal(t, p, c.PointToValue(px, py))
			}
		})
	}
}

func TestOrientation(t *testing.T) {
	c := mustCurve(t, 2, 8)
	want := []Cell{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
		{0, 2}, {0, 3}, {1, 3}, {1, 2},
		{2, 2}, {2, 3}, {3, 3}, {3, 2},
		{3, 1}, {2, 1}, {2, 0}, {3, 0},
	}
	for p, cell := range want {
		assert.Equal(t, cell, c.CellAt(uint64(p)), "position %d", p)
	}

	l, err := c.Layout(ranges.New(0, 4))
	require.NoError(t, err)
	assert.Equal(t, []Direction{Right, Down, Left}, l.PathVertices)
}

func TestPathIsConnectedWalk(t *testing.T) {
	c := mustCurve(t, 5, 512)
	for _, r := range []*ranges.Range{
		ranges.New(0, 1024),
		ranges.New(17, 300),
		ranges.New(1000, 24),
		ranges.New(511, 2),
	} {
		l, err := c.Layout(r)
		require.NoError(t, err)
		require.Len(t, l.PathVertices, int(r.Length-1))

		cell := l.StartCell
		visited := map[Cell]bool{cell: true}
		for i, d := range l.PathVertices {
			next := EndCell(cell, []Direction{d})
			require.Equal(t, c.CellAt(r.Start+uint64(i)+1), next)
			require.False(t, visited[next])
			visited[next] = true
			cell = next
		}
		assert.Len(t, visited, int(r.Length))
		assert.Equal(t, c.CellAt(r.End()-1), EndCell(l.StartCell, l.PathVertices))
	}
}

func TestOrderFourScenario(t *testing.T) {
	c := mustCurve(t, 4, 160)
	l, err := c.Layout(ranges.New(5, 3))
	require.NoError(t, err)

	assert.Equal(t, c.CellAt(5), l.StartCell)
	assert.Len(t, l.PathVertices, 2)
	assert.Equal(t, 10.0, l.CellWidth)

	c6 := EndCell(l.StartCell, l.PathVertices[:1])
	c7 := EndCell(c6, l.PathVertices[1:])
	assert.Equal(t, c.CellAt(6), c6)
	assert.Equal(t, c.CellAt(7), c7)
}

func TestPixelRoundTrip(t *testing.T) {
	c := mustCurve(t, 3, 97)
	for py := 0.0; py < 97; py += 1.7 {
		for px := 0.0; px < 97; px += 1.3 {
			v := c.PointToValue(px, py)
			l, err := c.Layout(ranges.New(v, 1))
			require.NoError(t, err)
			x0 := float64(l.StartCell.X) * l.CellWidth
			y0 := float64(l.StartCell.Y) * l.CellWidth
			require.True(t, px >= x0 && px < x0+l.CellWidth, "x %v not in cell at %v", px, x0)
			require.True(t, py >= y0 && py < y0+l.CellWidth, "y %v not in cell at %v", py, y0)
		}
	}
}

func TestPointToValueClampsEdges(t *testing.T) {
	c := mustCurve(t, 2, 40)
	last := Cell{X: 3, Y: 3}
	assert.Equal(t, c.ValueAt(last), c.PointToValue(40, 40))
	assert.Equal(t, c.ValueAt(last), c.PointToValue(1e9, 1e9))
	assert.Equal(t, c.ValueAt(Cell{}), c.PointToValue(-5, -0.1))
	assert.Equal(t, c.ValueAt(Cell{X: 3}), c.PointToValue(40, 0))
}

func TestLayoutIsIdempotent(t *testing.T) {
	c := mustCurve(t, 6, 640)
	r := ranges.New(1234, 77)
	a, err := c.Layout(r)
	require.NoError(t, err)
	b, err := c.Layout(r)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLayoutErrors(t *testing.T) {
	c := mustCurve(t, 2, 40)

	_, err := c.Layout(ranges.New(10, 7))
	assert.ErrorIs(t, err, ErrRangeOverflow)

	_, err = c.Layout(ranges.New(^uint64(0), 2))
	assert.ErrorIs(t, err, ErrRangeOverflow)

	_, err = c.Layout(ranges.New(3, 0))
	assert.ErrorIs(t, err, ErrEmptyRange)

	_, err = c.Layout(ranges.New(10, 6))
	assert.NoError(t, err)
	assert.NoError(t, c.Validate(ranges.New(15, 1)))
	assert.ErrorIs(t, c.Validate(ranges.New(16, 1)), ErrRangeOverflow)

	ls, err := c.LayoutAll([]*ranges.Range{ranges.New(0, 1), ranges.New(15, 2)})
	assert.ErrorIs(t, err, ErrRangeOverflow)
	assert.Nil(t, ls)
}

func TestLayoutBounds(t *testing.T) {
	c := mustCurve(t, 3, 80)
	l, err := c.Layout(ranges.New(0, 16))
	require.NoError(t, err)
	assert.Equal(t, Bounds{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4}, l.Bounds)

	l, err = c.Layout(ranges.New(0, 64))
	require.NoError(t, err)
	assert.Equal(t, uint32(8), l.Bounds.Width())
	assert.Equal(t, uint32(8), l.Bounds.Height())
}

func TestCoarsenedLayout(t *testing.T) {
	fine := mustCurve(t, 4, 160)
	coarse := mustCurve(t, 4, 160, WithCoarsening())

	l, err := coarse.Layout(ranges.New(32, 32))
	require.NoError(t, err)
	assert.Equal(t, 2, l.Order)
	assert.Equal(t, 40.0, l.CellWidth)
	assert.Len(t, l.PathVertices, 1)

	// the coarse block covers exactly the fine cells of the range
	fl, err := fine.Layout(ranges.New(32, 32))
	require.NoError(t, err)
	scaled := Bounds{MinX: l.Bounds.MinX * 4, MinY: l.Bounds.MinY * 4, MaxX: l.Bounds.MaxX * 4, MaxY: l.Bounds.MaxY * 4}
	assert.Equal(t, fl.Bounds, scaled)

	l, err = coarse.Layout(ranges.New(5, 3))
	require.NoError(t, err)
	assert.Equal(t, 4, l.Order)
	assert.Len(t, l.PathVertices, 2)
}

func TestLayoutBudget(t *testing.T) {
	fine := mustCurve(t, 16, 1024)
	coarse := mustCurve(t, 16, 1024, WithCoarsening())

	odd := ranges.New(1, fine.Capacity()-1)
	_, err := fine.Layout(odd)
	assert.ErrorIs(t, err, ErrLayoutTooLarge)
	_, err = coarse.LayoutAll([]*ranges.Range{odd})
	assert.ErrorIs(t, err, ErrLayoutTooLarge)

	aligned := ranges.New(0, fine.Capacity())
	assert.Equal(t, uint64(1), coarse.Cells(aligned))
	assert.Equal(t, fine.Capacity(), fine.Cells(aligned))
	_, err = coarse.LayoutAll([]*ranges.Range{aligned})
	assert.NoError(t, err)

	half := ranges.New(1, MaxLayoutCells/2)
	assert.NoError(t, fine.CheckBudget([]*ranges.Range{half, half}))
	assert.ErrorIs(t, fine.CheckBudget([]*ranges.Range{half, half, ranges.New(0, 1)}), ErrLayoutTooLarge)
	assert.ErrorIs(t, fine.CheckBudget([]*ranges.Range{ranges.New(0, 0)}), ErrEmptyRange)
}
