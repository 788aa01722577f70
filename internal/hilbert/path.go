package hilbert

import "strings"

// Direction is one unit step between two adjacent cells. Y grows downwards.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "U"
	case Down:
		return "D"
	case Left:
		return "L"
	case Right:
		return "R"
	}
	return "?"
}

// Delta returns the cell offset of one step.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the direction walking the same step backwards.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Horizontal reports whether d is Left or Right.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

func directionBetween(a, b Cell) Direction {
	switch {
	case b.X > a.X:
		return Right
	case b.X < a.X:
		return Left
	case b.Y > a.Y:
		return Down
	default:
		return Up
	}
}

// Run is a straight stretch of identical steps.
type Run struct {
	Dir   Direction
	Steps int
}

// SimplifyPath collapses consecutive identical steps into runs. The polyline
// described by the runs visits the same corner points as the input path.
func SimplifyPath(path []Direction) []Run {
	if len(path) == 0 {
		return nil
	}
	runs := make([]Run, 0, len(path)/2+1)
	cur := Run{Dir: path[0], Steps: 1}
	for _, d := range path[1:] {
		if d == cur.Dir {
			cur.Steps++
			continue
		}
		runs = append(runs, cur)
		cur = Run{Dir: d, Steps: 1}
	}
	return append(runs, cur)
}

// AllHorizontal reports whether every step of a non-empty path goes in the
// same horizontal direction, and which one.
func AllHorizontal(path []Direction) (Direction, bool) {
	if len(path) == 0 || !path[0].Horizontal() {
		return 0, false
	}
	for _, d := range path[1:] {
		if d != path[0] {
			return 0, false
		}
	}
	return path[0], true
}

// Reverse returns the path walked from its last cell back to its first.
func Reverse(path []Direction) []Direction {
	out := make([]Direction, len(path))
	for i, d := range path {
		out[len(path)-1-i] = d.Opposite()
	}
	return out
}

// EndCell returns the cell reached by walking path from start.
func EndCell(start Cell, path []Direction) Cell {
	x, y := int64(start.X), int64(start.Y)
	for _, d := range path {
		dx, dy := d.Delta()
		x += int64(dx)
		y += int64(dy)
	}
	return Cell{X: uint32(x), Y: uint32(y)}
}

// PathString encodes a path as its step letters, e.g. "RRDL".
func PathString(path []Direction) string {
	var sb strings.Builder
	sb.Grow(len(path))
	for _, d := range path {
		sb.WriteString(d.String())
	}
	return sb.String()
}
