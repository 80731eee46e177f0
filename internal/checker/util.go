package checker

import "golang.org/x/exp/constraints"

// minOf and maxOf fold a non-empty slice of ordered values. The checker
// reaches for these once per multi-arm construct (Select's per-arm bound
// reduction) rather than re-deriving a two-line loop at each call site —
// the one place in this package where the comparison is over a slice
// instead of a fixed pair, so a shared generic helper earns its keep.
func minOf[T constraints.Signed](vs []T) T {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf[T constraints.Signed](vs []T) T {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
