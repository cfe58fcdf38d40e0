package drdat

import (
	"fmt"
	"math"
)

// Params are the per-variable quantization parameters.
//
// Encoding maps a value v to round((v + Offset) * Scale), clamped to
// [0, MaxValue]; NaN maps to NaNValue. Scale and Offset are persisted as
// int32 codes of value*FixedPointScale, so only three decimal digits of each
// survive a round trip.
type Params struct {
	BitsPerSample int
	Scale         float64
	Offset        float64
}

// DefaultParams returns 16 bit samples with an identity transform.
func DefaultParams() Params {
	return Params{BitsPerSample: 16, Scale: 1, Offset: 0}
}

// Validate reports whether p can be encoded.
func (p Params) Validate() error {
	if err := checkBits(p.BitsPerSample); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("%w: scale %v is not finite", ErrInvalidParameter, p.Scale)
	}
	if math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) {
		return fmt.Errorf("%w: offset %v is not finite", ErrInvalidParameter, p.Offset)
	}
	sc, ok := fixedPoint(p.Scale)
	if !ok {
		return fmt.Errorf("%w: scale %v does not fit a fixed-point code", ErrInvalidParameter, p.Scale)
	}
	if sc == 0 {
		return fmt.Errorf("%w: scale %v rounds to zero", ErrInvalidParameter, p.Scale)
	}
	if _, ok := fixedPoint(p.Offset); !ok {
		return fmt.Errorf("%w: offset %v does not fit a fixed-point code", ErrInvalidParameter, p.Offset)
	}
	return nil
}

func checkBits(bits int) error {
	if bits <= 0 || bits%8 != 0 || bits > MaxBitsPerSample {
		return fmt.Errorf("bits per sample %d must be a multiple of 8 in [8, %d]", bits, MaxBitsPerSample)
	}
	return nil
}

// SampleBytes returns the storage width of one sample.
func (p Params) SampleBytes() int { return p.BitsPerSample / 8 }

// MaxValue returns the largest code a real value can quantize to (2^bits - 2).
func (p Params) MaxValue() uint64 { return 1<<uint(p.BitsPerSample) - 2 }

// NaNValue returns the sentinel code reserved for NaN (2^bits - 1).
func (p Params) NaNValue() uint64 { return p.MaxValue() + 1 }

// Quantize maps v to its stored sample code.
//
// Values at or above MaxValue after scaling store MaxValue, values at or
// below zero store zero. A stored MaxValue is therefore ambiguous between a
// legitimate value and an overflow.
func (p Params) Quantize(v float64) uint64 {
	if math.IsNaN(v) {
		return p.NaNValue()
	}
	q := math.RoundToEven((v + p.Offset) * p.Scale)
	maxVal := p.MaxValue()
	switch {
	case q >= float64(maxVal):
		return maxVal
	case q <= 0:
		return 0
	}
	return uint64(q)
}

// Dequantize maps a stored sample code back to a real value.
// The NaN sentinel is not special-cased.
func (p Params) Dequantize(s uint64) float64 {
	return float64(s)/p.Scale - p.Offset
}

// codes returns the persisted scale and offset codes. p must be valid.
func (p Params) codes() (scale, offset int32) {
	scale, _ = fixedPoint(p.Scale)
	offset, _ = fixedPoint(p.Offset)
	return scale, offset
}

func paramsFromCodes(bits int, scale, offset int32) Params {
	return Params{
		BitsPerSample: bits,
		Scale:         float64(scale) / FixedPointScale,
		Offset:        float64(offset) / FixedPointScale,
	}
}

// fixedPoint rounds v*FixedPointScale half to even and reports whether it fits an int32.
func fixedPoint(v float64) (int32, bool) {
	c := math.RoundToEven(v * FixedPointScale)
	if math.IsNaN(c) || c < math.MinInt32 || c > math.MaxInt32 {
		return 0, false
	}
	return int32(c), true
}
