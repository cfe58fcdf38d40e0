package drdat

import (
	"fmt"
	"math"
)

// Array is an N-dimensional array of float64 stored in row-major order:
// the last axis varies fastest.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray allocates a zeroed array of the given shape.
func NewArray(shape ...int) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	return &Array{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, n),
	}, nil
}

// FromSlice wraps data as an array of the given shape. data is not copied.
func FromSlice(data []float64, shape ...int) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v (want %d)", ErrInvalidParameter, len(data), shape, n)
	}
	return &Array{Shape: append([]int(nil), shape...), Data: data}, nil
}

func checkShape(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: array must have at least one dimension", ErrInvalidParameter)
	}
	if len(shape) > MaxRank {
		return 0, fmt.Errorf("%w: %d dimensions exceeds %d", ErrInvalidParameter, len(shape), MaxRank)
	}
	for i, d := range shape {
		if d < 0 || uint64(d) > math.MaxUint32 {
			return 0, fmt.Errorf("%w: dimension %d size %d out of range", ErrInvalidParameter, i, d)
		}
	}
	n, ok := shapeProduct(shape)
	if !ok || !fitsInt(n) {
		return 0, fmt.Errorf("%w: shape %v element count", ErrArithmeticOverflow, shape)
	}
	return int(n), nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Shape) }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Data) }

// Strides returns the row-major element stride of each axis.
func (a *Array) Strides() []int {
	strides := make([]int, len(a.Shape))
	s := 1
	for i := len(a.Shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= a.Shape[i]
	}
	return strides
}

// Index converts an N-dimensional index into a flat offset into Data.
// It returns false if idx has the wrong rank or lies outside the shape.
func (a *Array) Index(idx ...int) (int, bool) {
	if len(idx) != len(a.Shape) {
		return 0, false
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.Shape[i] {
			return 0, false
		}
		off = off*a.Shape[i] + x
	}
	return off, true
}

// At returns the element at idx. It panics if idx is out of range, like a slice index.
func (a *Array) At(idx ...int) float64 {
	off, ok := a.Index(idx...)
	if !ok {
		panic(fmt.Sprintf("drdat: index %v out of range for shape %v", idx, a.Shape))
	}
	return a.Data[off]
}

// Set stores v at idx. It panics if idx is out of range.
func (a *Array) Set(v float64, idx ...int) {
	off, ok := a.Index(idx...)
	if !ok {
		panic(fmt.Sprintf("drdat: index %v out of range for shape %v", idx, a.Shape))
	}
	a.Data[off] = v
}

// validate checks that Data matches Shape.
func (a *Array) validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil array", ErrInvalidParameter)
	}
	n, err := checkShape(a.Shape)
	if err != nil {
		return err
	}
	if len(a.Data) != n {
		return fmt.Errorf("%w: %d values for shape %v (want %d)", ErrInvalidParameter, len(a.Data), a.Shape, n)
	}
	return nil
}
