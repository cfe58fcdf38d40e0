package drdat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayStridesAndIndex(t *testing.T) {
	t.Parallel()

	a, err := NewArray(5, 7, 4, 8)
	require.NoError(t, err)
	require.Equal(t, 5*7*4*8, a.Len())
	require.Equal(t, []int{224, 32, 8, 1}, a.Strides())

	off, ok := a.Index(1, 6, 3, 2)
	require.True(t, ok)
	require.Equal(t, 1*224+6*32+3*8+2, off)

	_, ok = a.Index(5, 0, 0, 0)
	require.False(t, ok, "axis 0 is out of range")
	_, ok = a.Index(1, 2)
	require.False(t, ok, "wrong rank")

	a.Set(42, 4, 6, 3, 7)
	require.Equal(t, 42.0, a.Data[len(a.Data)-1])
	require.Equal(t, 42.0, a.At(4, 6, 3, 7))
	require.Panics(t, func() { a.At(0, 0, 0, 8) })
}

func TestFromSlice(t *testing.T) {
	t.Parallel()

	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 6.0, a.At(1, 2))
	require.Equal(t, 4.0, a.At(1, 0))

	_, err = FromSlice([]float64{1, 2, 3}, 2, 3)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = FromSlice(nil)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewArray(-1)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNewArrayZeroExtent(t *testing.T) {
	t.Parallel()

	a, err := NewArray(0, 3)
	require.NoError(t, err)
	require.Zero(t, a.Len())
	require.Equal(t, []int{0, 3}, a.Shape)
}
