package drdat

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleBlob(t *testing.T) []byte {
	t.Helper()
	blob, err := EncodeArrays(
		[]*Array{
			mustArray(t, []float64{-1, 0, 1, 2}, 4),
			mustArray(t, []float64{10, 20, 30, 40, 50, 60}, 2, 3),
		},
		[]Params{{16, 100, 1}, {8, 2, 0}},
	)
	require.NoError(t, err)
	return blob
}

// rawRecord builds a single-record blob header by hand.
func rawRecord(bits byte, dims []uint32, scale, offset int32) []byte {
	b := []byte{Magic, 1, bits, byte(len(dims))}
	for _, d := range dims {
		b = binary.LittleEndian.AppendUint32(b, d)
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(scale))
	b = binary.LittleEndian.AppendUint32(b, uint32(offset))
	return b
}

func TestDecodeBadMagic(t *testing.T) {
	t.Parallel()

	blob := sampleBlob(t)
	blob[0] = 70

	vars, err := Decode(blob)
	require.ErrorIs(t, err, ErrBadMagic)
	require.ErrorIs(t, err, ErrFormat)
	require.Nil(t, vars)
}

func TestDecodeRejectsEveryTruncation(t *testing.T) {
	t.Parallel()

	blob := sampleBlob(t)
	for n := range len(blob) {
		vars, err := Decode(blob[:n:n])
		require.ErrorIs(t, err, ErrFormat, "prefix of %d bytes", n)
		require.ErrorIs(t, err, ErrTruncated, "prefix of %d bytes", n)
		require.Nil(t, vars)
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	t.Parallel()

	blob := append(sampleBlob(t), 0)
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrTrailingData)
	require.ErrorIs(t, err, ErrFormat)
}

func TestDecodeCountMismatch(t *testing.T) {
	t.Parallel()

	blob := sampleBlob(t)
	blob[1] = 3
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrTruncated)

	blob[1] = 1
	_, err = Decode(blob)
	require.ErrorIs(t, err, ErrTrailingData)
}

func TestDecodeMalformedRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		blob []byte
	}{
		{"zero bits", rawRecord(0, []uint32{1}, 1000, 0)},
		{"odd bits", rawRecord(12, []uint32{1}, 1000, 0)},
		{"too wide", rawRecord(64, []uint32{1}, 1000, 0)},
		{"zero rank", rawRecord(8, nil, 1000, 0)},
		{"zero scale", append(rawRecord(8, []uint32{1}, 0, 0), 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.blob)
			require.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecodeDimensionOverflow(t *testing.T) {
	t.Parallel()

	blob := rawRecord(32, []uint32{math.MaxUint32, math.MaxUint32, math.MaxUint32}, 1000, 0)
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	require.NotErrorIs(t, err, ErrFormat)
}

func TestDecodeHugeShapeIsTruncatedNotAllocated(t *testing.T) {
	t.Parallel()

	if math.MaxInt == math.MaxInt32 {
		t.Skip("byte size does not fit int on 32-bit platforms")
	}
	blob := rawRecord(8, []uint32{1 << 20, 1 << 20}, 1000, 0)
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestInspectLayout(t *testing.T) {
	t.Parallel()

	blob := sampleBlob(t)
	h, err := Inspect(blob)
	require.NoError(t, err)
	require.Len(t, h.Records, 2)

	first := h.Records[0]
	require.Equal(t, []int{4}, first.Shape)
	require.Equal(t, int32(100000), first.ScaleCode)
	require.Equal(t, int32(1000), first.OffsetCode)
	require.Equal(t, 2+2+4+8, first.DataOffset)
	require.Equal(t, 8, first.DataSize)
	require.Equal(t, 4, first.Samples())

	second := h.Records[1]
	require.Equal(t, []int{2, 3}, second.Shape)
	require.Equal(t, Params{8, 2, 0}, second.Params)
	require.Equal(t, first.DataOffset+first.DataSize+2+8+8, second.DataOffset)
	require.Equal(t, len(blob), second.DataOffset+second.DataSize)
}

func TestDecodeReshapesRowMajor(t *testing.T) {
	t.Parallel()

	vars, err := Decode(sampleBlob(t))
	require.NoError(t, err)

	a := vars[1].Array
	require.Equal(t, 10.0, a.At(0, 0))
	require.Equal(t, 30.0, a.At(0, 2))
	require.Equal(t, 40.0, a.At(1, 0))
	require.Equal(t, 60.0, a.At(1, 2))
}
