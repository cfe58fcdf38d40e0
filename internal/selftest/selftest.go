// Package selftest round-trips a fixed set of synthetic variables through
// the codec and reports how well each survived.
package selftest

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/samcharles93/drdat/internal/logger"
	"github.com/samcharles93/drdat/pkg/drdat"
)

// probe is the element compared for every variable, truncated to its rank.
var probe = []int{1, 6, 3, 2}

type Options struct {
	Seed uint64
}

// Case is one synthetic variable.
type Case struct {
	Name   string
	Array  *drdat.Array
	Params drdat.Params
}

// Result describes one variable after the round trip.
type Result struct {
	Name     string
	InShape  []int
	OutShape []int
	Probe    []int
	In       float64
	Out      float64
	MaxError float64
	Bound    float64
}

// OK reports whether the shapes match and every element is within the
// quantization bound, allowing for float64 rounding in the dequantize step.
func (r Result) OK() bool {
	if len(r.InShape) != len(r.OutShape) {
		return false
	}
	for i := range r.InShape {
		if r.InShape[i] != r.OutShape[i] {
			return false
		}
	}
	return r.MaxError <= r.Bound+1e-9
}

type Report struct {
	Blob    []byte
	Results []Result
}

// Cases builds the synthetic variables: a latitude ramp, bathymetry in
// feet, sea surface temperature in Fahrenheit and a unit 4-D field.
func Cases(seed uint64) []Case {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	lat := make([]float64, 0, 720)
	for i := range 720 {
		lat = append(lat, -90+0.25*float64(i))
	}

	return []Case{
		{"latitude", must(drdat.FromSlice(lat, len(lat))), drdat.Params{BitsPerSample: 16, Scale: 360, Offset: 90}},
		{"bathymetry", uniform(r, 0, 16000, 23, 48), drdat.Params{BitsPerSample: 16, Scale: 2, Offset: 0}},
		{"sst", uniform(r, 32, 72, 12, 24, 45), drdat.Params{BitsPerSample: 8, Scale: 5, Offset: -30}},
		{"random4d", uniform(r, 0, 1, 5, 7, 4, 8), drdat.Params{BitsPerSample: 8, Scale: 200, Offset: 0}},
	}
}

func uniform(r *rand.Rand, lo, hi float64, shape ...int) *drdat.Array {
	a := must(drdat.NewArray(shape...))
	for i := range a.Data {
		a.Data[i] = lo + r.Float64()*(hi-lo)
	}
	return a
}

func must(a *drdat.Array, err error) *drdat.Array {
	if err != nil {
		panic(err)
	}
	return a
}

// Run encodes the cases, decodes the blob and compares the result.
func Run(ctx context.Context, opts Options) (Report, error) {
	log := logger.FromContext(ctx)
	cases := Cases(opts.Seed)

	vars := make([]drdat.Variable, len(cases))
	for i, c := range cases {
		vars[i] = drdat.Variable{Array: c.Array, Params: c.Params}
	}

	blob, err := drdat.Encode(vars, drdat.WithLogger(log))
	if err != nil {
		return Report{}, fmt.Errorf("encode: %w", err)
	}
	out, err := drdat.Decode(blob, drdat.WithLogger(log))
	if err != nil {
		return Report{}, fmt.Errorf("decode: %w", err)
	}
	if len(out) != len(cases) {
		return Report{}, fmt.Errorf("decoded %d variables, encoded %d", len(out), len(cases))
	}

	rep := Report{Blob: blob, Results: make([]Result, len(cases))}
	for i, c := range cases {
		got := out[i].Array
		res := Result{
			Name:     c.Name,
			InShape:  c.Array.Shape,
			OutShape: got.Shape,
			Probe:    probe[:c.Array.Rank()],
			Bound:    0.5 / math.Abs(out[i].Params.Scale),
		}
		res.In = c.Array.At(res.Probe...)
		if off, ok := got.Index(res.Probe...); ok {
			res.Out = got.Data[off]
		}
		for j := range min(len(c.Array.Data), len(got.Data)) {
			res.MaxError = max(res.MaxError, math.Abs(c.Array.Data[j]-got.Data[j]))
		}
		log.Info("variable compared",
			"name", res.Name,
			"in_shape", res.InShape,
			"out_shape", res.OutShape,
			"in", res.In,
			"out", res.Out,
			"max_error", res.MaxError,
		)
		rep.Results[i] = res
	}
	return rep, nil
}
