// Package drdat implements the DRDAT container format.
//
// A DRDAT blob is an ordered list of N-dimensional numeric arrays, each
// quantized independently to an unsigned integer width with a linear
// scale/offset transform. The layout is a two byte header (magic, count)
// followed by one self-describing record per variable. All multi-byte
// integers are little-endian.
package drdat

// DRDAT format constants must never change.
const (
	// Magic is the first byte of every DRDAT blob.
	Magic byte = 69

	// MaxVariables is the largest variable count the one byte header can hold.
	MaxVariables = 255

	// MaxRank is the largest dimension count a record can hold.
	MaxRank = 255

	// FixedPointScale is the multiplier used to persist scale and offset as
	// int32 codes. Three decimal digits survive; anything finer is rounded away.
	FixedPointScale = 1000

	// MaxBitsPerSample bounds the sample width. The clamp and sentinel
	// arithmetic runs in float64/uint64 and is only exact up to here.
	MaxBitsPerSample = 32

	headerSize = 2

	// bits, rank, scale code, offset code
	recordFixedSize = 1 + 1 + 4 + 4
	dimSize         = 4
)
