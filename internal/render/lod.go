package render

import (
	"cmp"
	"math/bits"
	"slices"
)

// SelectLOD keeps the n most significant items: wider cells first, then
// starts aligned to more trailing zero bits, then dataset order. The result
// is back in dataset order so overlaps stack as in a full frame.
func SelectLOD(items []Item, n int) []Item {
	if n < 0 || len(items) <= n {
		return items
	}
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, compareSignificance)
	kept := ranked[:n]
	slices.SortFunc(kept, func(a, b Item) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return kept
}

func compareSignificance(a, b Item) int {
	if c := cmp.Compare(b.Layout.CellWidth, a.Layout.CellWidth); c != 0 {
		return c
	}
	za := bits.TrailingZeros64(a.Layout.Range.Start)
	zb := bits.TrailingZeros64(b.Layout.Range.Start)
	if c := cmp.Compare(zb, za); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
