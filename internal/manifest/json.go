package manifest

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/samcharles93/drdat/pkg/drdat"
)

var ErrRagged = errors.New("manifest: ragged array")

// ParseArray parses a JSON nested array of numbers into a row-major array.
// The nesting depth gives the rank; null elements become NaN.
func ParseArray(raw []byte) (*drdat.Array, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse array: %w", err)
	}

	var shape []int
	for cur := v; ; {
		arr, ok := cur.([]any)
		if !ok {
			break
		}
		shape = append(shape, len(arr))
		if len(arr) == 0 {
			break
		}
		cur = arr[0]
	}
	if len(shape) == 0 {
		return nil, errors.New("parse array: top-level value must be an array")
	}

	n := 1
	for _, d := range shape {
		n *= d
	}
	data, err := flatten(v, shape, 0, make([]float64, 0, n))
	if err != nil {
		return nil, err
	}
	return drdat.FromSlice(data, shape...)
}

func flatten(v any, shape []int, depth int, out []float64) ([]float64, error) {
	if depth == len(shape) {
		switch x := v.(type) {
		case float64:
			return append(out, x), nil
		case nil:
			return append(out, math.NaN()), nil
		default:
			return nil, fmt.Errorf("parse array: unexpected %T at depth %d", v, depth)
		}
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != shape[depth] {
		return nil, fmt.Errorf("%w: depth %d does not match shape %v", ErrRagged, depth, shape)
	}
	var err error
	for _, e := range arr {
		if out, err = flatten(e, shape, depth+1, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Document is the JSON export of decoded variables.
type Document struct {
	Variables []ExportVariable `json:"variables"`
}

type ExportVariable struct {
	Bits   int     `json:"bits"`
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
	Shape  []int   `json:"shape"`
	Values any     `json:"values"`
}

// Export converts decoded variables into a Document with nested values.
// NaN values are exported as null.
func Export(vars []drdat.Variable) Document {
	doc := Document{Variables: make([]ExportVariable, len(vars))}
	for i, v := range vars {
		doc.Variables[i] = ExportVariable{
			Bits:   v.Params.BitsPerSample,
			Scale:  v.Params.Scale,
			Offset: v.Params.Offset,
			Shape:  v.Array.Shape,
			Values: nest(v.Array.Data, v.Array.Shape),
		}
	}
	return doc
}

// MarshalVariables renders decoded variables as indented JSON.
func MarshalVariables(vars []drdat.Variable) ([]byte, error) {
	return json.MarshalIndent(Export(vars), "", "  ")
}

// MarshalArray renders a single array as a JSON nested array, the inverse of ParseArray.
func MarshalArray(a *drdat.Array) ([]byte, error) {
	return json.Marshal(nest(a.Data, a.Shape))
}

func nest(data []float64, shape []int) []any {
	out := make([]any, shape[0])
	if len(shape) == 1 {
		for i, x := range data {
			if math.IsNaN(x) {
				continue
			}
			out[i] = x
		}
		return out
	}
	chunk := 1
	for _, d := range shape[1:] {
		chunk *= d
	}
	for i := range out {
		out[i] = nest(data[i*chunk:(i+1)*chunk], shape[1:])
	}
	return out
}
