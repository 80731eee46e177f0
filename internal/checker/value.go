package checker

// aValue is the checker's abstract value: either a known scalar bound, or a
// die group described only by its length and face (symmetric across the
// min and max traversal — at min, face is pinned to 1; at max, to the
// roll's face count).
type aValue struct {
	isVector bool
	scalar   int64
	length   int64
	face     int64
}

func ascalar(v int64) aValue { return aValue{scalar: v} }

func avector(length, face int64) aValue { return aValue{isVector: true, length: length, face: face} }

// collapse mirrors ir/interp's runtime Collapse: a vector of length dice
// each of size face collapses to length*face.
func (v aValue) collapse() int64 {
	if v.isVector {
		return v.length * v.face
	}
	return v.scalar
}
