package drdat

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Header is the parsed structure of a DRDAT blob without its sample values.
type Header struct {
	Records []Record
}

// Record describes one variable record.
type Record struct {
	Params     Params
	Shape      []int
	ScaleCode  int32
	OffsetCode int32

	// DataOffset and DataSize locate the packed samples within the blob.
	DataOffset int
	DataSize   int
}

// Samples returns the number of samples in the record.
func (r *Record) Samples() int {
	if r.Params.BitsPerSample == 0 {
		return 0
	}
	return r.DataSize / r.Params.SampleBytes()
}

// Inspect walks the header and record grammar of data and returns the record
// layout. Sample bytes are bounds-checked but not read.
func Inspect(data []byte) (Header, error) {
	d := decoder{buf: data}
	magic, err := d.u8()
	if err != nil {
		return Header{}, err
	}
	if magic != Magic {
		return Header{}, fmt.Errorf("%w: got %d, want %d", ErrBadMagic, magic, Magic)
	}
	count, err := d.u8()
	if err != nil {
		return Header{}, err
	}

	h := Header{Records: make([]Record, 0, count)}
	for i := range int(count) {
		rec, err := d.record()
		if err != nil {
			return Header{}, fmt.Errorf("variable %d: %w", i, err)
		}
		h.Records = append(h.Records, rec)
	}
	if d.off != len(d.buf) {
		return Header{}, fmt.Errorf("%w: %d bytes after %d variables", ErrTrailingData, len(d.buf)-d.off, count)
	}
	return h, nil
}

// Decode parses a DRDAT blob and returns its dequantized variables in record order.
// The whole blob is validated before any array is allocated.
func Decode(data []byte, opts ...Option) ([]Variable, error) {
	o := newOptions(opts)

	h, err := Inspect(data)
	if err != nil {
		return nil, err
	}

	vars := make([]Variable, len(h.Records))
	for i := range h.Records {
		rec := &h.Records[i]
		o.debug("reading variable",
			"bytes", rec.Params.SampleBytes(),
			"shape", rec.Shape,
			"scale", rec.Params.Scale,
			"offset", rec.Params.Offset,
		)
		vars[i] = Variable{
			Array:  dequantize(rec, data[rec.DataOffset:rec.DataOffset+rec.DataSize], o.strictNaN),
			Params: rec.Params,
		}
	}
	return vars, nil
}

func dequantize(rec *Record, raw []byte, strictNaN bool) *Array {
	p := rec.Params
	width := p.SampleBytes()
	nan := p.NaNValue()
	out := make([]float64, rec.Samples())
	for i := range out {
		s := sample(raw[i*width:], width)
		if strictNaN && s == nan {
			out[i] = math.NaN()
			continue
		}
		out[i] = p.Dequantize(s)
	}
	return &Array{Shape: rec.Shape, Data: out}
}

// decoder is a bounds-checked little-endian cursor over a DRDAT blob.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) need(n uint64, what string) error {
	if rem := uint64(len(d.buf) - d.off); n > rem {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, %d left", ErrTruncated, what, n, d.off, rem)
	}
	return nil
}

func (d *decoder) u8() (byte, error) {
	if err := d.need(1, "byte"); err != nil {
		return 0, err
	}
	v := d.buf[d.off]
	d.off++
	return v, nil
}

func (d *decoder) u32() (uint32, error) {
	if err := d.need(4, "uint32"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v, nil
}

func (d *decoder) i32() (int32, error) {
	v, err := d.u32()
	return int32(v), err
}

func (d *decoder) record() (Record, error) {
	bits, err := d.u8()
	if err != nil {
		return Record{}, err
	}
	if err := checkBits(int(bits)); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	rank, err := d.u8()
	if err != nil {
		return Record{}, err
	}
	if rank == 0 {
		return Record{}, fmt.Errorf("%w: zero dimensions", ErrFormat)
	}
	if err := d.need(dimSize*uint64(rank), "dimension sizes"); err != nil {
		return Record{}, err
	}
	dims := make([]uint32, rank)
	for i := range dims {
		dims[i], _ = d.u32()
	}
	scaleCode, err := d.i32()
	if err != nil {
		return Record{}, err
	}
	offsetCode, err := d.i32()
	if err != nil {
		return Record{}, err
	}
	if scaleCode == 0 {
		return Record{}, fmt.Errorf("%w: zero scale", ErrFormat)
	}

	count, ok := shapeProduct(dims)
	if !ok {
		return Record{}, fmt.Errorf("%w: dimensions %v", ErrArithmeticOverflow, dims)
	}
	size, ok := mulUint64(count, uint64(bits/8))
	if !ok || !fitsInt(size) {
		return Record{}, fmt.Errorf("%w: sample bytes for dimensions %v", ErrArithmeticOverflow, dims)
	}
	if err := d.need(size, "samples"); err != nil {
		return Record{}, err
	}

	shape := make([]int, rank)
	for i, x := range dims {
		if !fitsInt(uint64(x)) {
			return Record{}, fmt.Errorf("%w: dimension %d size %d", ErrArithmeticOverflow, i, x)
		}
		shape[i] = int(x)
	}

	rec := Record{
		Params:     paramsFromCodes(int(bits), scaleCode, offsetCode),
		Shape:      shape,
		ScaleCode:  scaleCode,
		OffsetCode: offsetCode,
		DataOffset: d.off,
		DataSize:   int(size),
	}
	d.off += int(size)
	return rec, nil
}
