package drdat

import "math"

func mulUint64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > ^uint64(0)/b {
		return 0, false
	}
	return a * b, true
}

func addUint64(a, b uint64) (uint64, bool) {
	if a > ^uint64(0)-b {
		return 0, false
	}
	return a + b, true
}

// shapeProduct returns the element count for a shape, reporting false on overflow.
func shapeProduct[T int | uint32](shape []T) (uint64, bool) {
	n := uint64(1)
	for _, d := range shape {
		var ok bool
		n, ok = mulUint64(n, uint64(d))
		if !ok {
			return 0, false
		}
	}
	return n, true
}

// fitsInt reports whether n can be used as a length or index on this architecture.
func fitsInt(n uint64) bool {
	return n <= math.MaxInt
}
