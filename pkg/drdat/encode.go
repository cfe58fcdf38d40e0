package drdat

import (
	"encoding/binary"
	"fmt"
)

// Variable is one array together with the parameters it is (or was) quantized with.
type Variable struct {
	Array  *Array
	Params Params
}

// recordPlan holds everything about a record that can be computed before
// any byte is written.
type recordPlan struct {
	v          Variable
	width      int
	scaleCode  int32
	offsetCode int32
	size       uint64
}

func planRecord(v Variable) (recordPlan, error) {
	if err := v.Params.Validate(); err != nil {
		return recordPlan{}, err
	}
	if err := v.Array.validate(); err != nil {
		return recordPlan{}, err
	}
	width := v.Params.SampleBytes()
	dataSize, ok := mulUint64(uint64(len(v.Array.Data)), uint64(width))
	if !ok {
		return recordPlan{}, fmt.Errorf("%w: sample bytes for shape %v", ErrArithmeticOverflow, v.Array.Shape)
	}
	size, ok := addUint64(recordFixedSize+dimSize*uint64(len(v.Array.Shape)), dataSize)
	if !ok {
		return recordPlan{}, fmt.Errorf("%w: record size for shape %v", ErrArithmeticOverflow, v.Array.Shape)
	}
	sc, oc := v.Params.codes()
	return recordPlan{v: v, width: width, scaleCode: sc, offsetCode: oc, size: size}, nil
}

// Encode serializes vars into a DRDAT blob.
//
// All variables are validated and the output size computed before anything
// is written, so on error no partial output is returned.
func Encode(vars []Variable, opts ...Option) ([]byte, error) {
	o := newOptions(opts)

	if len(vars) > MaxVariables {
		return nil, fmt.Errorf("%w: %d variables exceeds %d", ErrInvalidParameter, len(vars), MaxVariables)
	}

	plans := make([]recordPlan, len(vars))
	total := uint64(headerSize)
	for i, v := range vars {
		p, err := planRecord(v)
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
		var ok bool
		if total, ok = addUint64(total, p.size); !ok {
			return nil, fmt.Errorf("%w: total size", ErrArithmeticOverflow)
		}
		plans[i] = p
	}
	if !fitsInt(total) {
		return nil, fmt.Errorf("%w: total size %d", ErrArithmeticOverflow, total)
	}

	e := encoder{buf: make([]byte, total)}
	e.u8(Magic)
	e.u8(byte(len(vars)))
	for _, p := range plans {
		o.debug("writing variable",
			"bytes", p.width,
			"shape", p.v.Array.Shape,
			"scale", p.v.Params.Scale,
			"offset", p.v.Params.Offset,
			"points", len(p.v.Array.Data),
		)
		e.record(p)
	}
	return e.buf, nil
}

// EncodeArrays encodes parallel lists of arrays and parameters.
func EncodeArrays(arrays []*Array, params []Params, opts ...Option) ([]byte, error) {
	if len(arrays) != len(params) {
		return nil, fmt.Errorf("%w: %d arrays but %d parameter sets", ErrInvalidParameter, len(arrays), len(params))
	}
	vars := make([]Variable, len(arrays))
	for i := range arrays {
		vars[i] = Variable{Array: arrays[i], Params: params[i]}
	}
	return Encode(vars, opts...)
}

// encoder writes into a buffer sized up front by Encode.
type encoder struct {
	buf []byte
	off int
}

func (e *encoder) u8(v byte) {
	e.buf[e.off] = v
	e.off++
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[e.off:], v)
	e.off += 4
}

func (e *encoder) i32(v int32) {
	e.u32(uint32(v))
}

func (e *encoder) record(p recordPlan) {
	a := p.v.Array
	e.u8(byte(p.v.Params.BitsPerSample))
	e.u8(byte(len(a.Shape)))
	for _, d := range a.Shape {
		e.u32(uint32(d))
	}
	e.i32(p.scaleCode)
	e.i32(p.offsetCode)
	for _, x := range a.Data {
		putSample(e.buf[e.off:], p.width, p.v.Params.Quantize(x))
		e.off += p.width
	}
}
