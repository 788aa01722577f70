// Package ranges holds the range data model and the interval index used for
// pointer hit-testing.
package ranges

import "fmt"

// Range is one segment of the linear space. Identity is the pointer: two
// ranges with equal bounds are still distinct for hover and picking.
type Range struct {
	Start  uint64
	Length uint64

	// Payload carries caller data (label, colour, ...). It is read through
	// accessors and never written by the chart.
	Payload map[string]any
}

func New(start, length uint64) *Range {
	return &Range{Start: start, Length: length}
}

// End returns the exclusive end of the range.
func (r *Range) End() uint64 {
	return r.Start + r.Length
}

// Contains reports whether v lies in [Start, End).
func (r *Range) Contains(v uint64) bool {
	return v >= r.Start && v-r.Start < r.Length
}

func (r *Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End())
}
