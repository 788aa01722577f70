package hilbert

import "errors"

var (
	// ErrInvalidOrder indicates a curve order outside [0, MaxOrder].
	ErrInvalidOrder = errors.New("invalid curve order")

	// ErrInvalidWidth indicates a canvas width that is not a positive number.
	ErrInvalidWidth = errors.New("invalid canvas width")

	// ErrRangeOverflow indicates a range reaching past the curve capacity.
	ErrRangeOverflow = errors.New("range exceeds curve capacity")

	// ErrEmptyRange indicates a range of length zero.
	ErrEmptyRange = errors.New("range is empty")

	// ErrLayoutTooLarge indicates ranges that walk more than MaxLayoutCells
	// cells in total.
	ErrLayoutTooLarge = errors.New("layout too large")
)
