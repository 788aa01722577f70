package ranges

import (
	"cmp"
	"slices"
)

type entry struct {
	start, end uint64
	order      int // position in the dataset, later entries are drawn on top
	r          *Range
}

// Index is a static interval tree over [Start, End). Entries are kept sorted
// by start and treated as an implicit balanced tree: the node of [lo, hi) is
// its midpoint and maxEnd holds the largest end in that subtree.
//
// An Index is immutable once built; rebuild it when the dataset changes.
type Index struct {
	entries []entry
	maxEnd  []uint64
}

// NewIndex builds an index over rs. Nil ranges and empty ranges are skipped.
func NewIndex(rs []*Range) *Index {
	idx := &Index{entries: make([]entry, 0, len(rs))}
	for i, r := range rs {
		if r == nil || r.Length == 0 {
			continue
		}
		idx.entries = append(idx.entries, entry{start: r.Start, end: r.End(), order: i, r: r})
	}
	slices.SortFunc(idx.entries, func(a, b entry) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	idx.maxEnd = make([]uint64, len(idx.entries))
	idx.build(0, len(idx.entries))
	return idx
}

func (idx *Index) build(lo, hi int) uint64 {
	if lo >= hi {
		return 0
	}
	mid := int(uint(lo+hi) >> 1)
	m := idx.entries[mid].end
	m = max(m, idx.build(lo, mid), idx.build(mid+1, hi))
	idx.maxEnd[mid] = m
	return m
}

// Len returns the number of indexed ranges.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Overlap returns every range containing v, in dataset order.
func (idx *Index) Overlap(v uint64) []*Range {
	var hits []entry
	idx.stab(0, len(idx.entries), v, func(e entry) {
		hits = append(hits, e)
	})
	slices.SortFunc(hits, func(a, b entry) int {
		return cmp.Compare(a.order, b.order)
	})
	out := make([]*Range, len(hits))
	for i, e := range hits {
		out[i] = e.r
	}
	return out
}

// Best returns the most specific range containing v: the shortest one, and
// among equally short ranges the one that comes last in the dataset. It
// returns nil when nothing contains v.
func (idx *Index) Best(v uint64) *Range {
	var (
		best  entry
		found bool
	)
	idx.stab(0, len(idx.entries), v, func(e entry) {
		if !found || e.end-e.start < best.end-best.start ||
			(e.end-e.start == best.end-best.start && e.order > best.order) {
			best = e
			found = true
		}
	})
	if !found {
		return nil
	}
	return best.r
}

func (idx *Index) stab(lo, hi int, v uint64, visit func(entry)) {
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if idx.maxEnd[mid] <= v {
			return
		}
		idx.stab(lo, mid, v, visit)
		e := idx.entries[mid]
		if e.start > v {
			return
		}
		if v < e.end {
			visit(e)
		}
		lo = mid + 1
	}
}
