// Package manifest describes variables to encode in YAML and moves array
// data in and out of JSON.
//
// A manifest looks like:
//
//	variables:
//	  - name: latitude
//	    data: lat.json
//	    bits: 16
//	    scale: 360
//	    offset: 90
//
// Data paths are relative to the manifest. Unset bits, scale or offset take
// the caller's defaults.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/drdat/pkg/drdat"
)

type Manifest struct {
	Variables []Entry `yaml:"variables"`

	dir string
}

// Entry is one variable. Pointer fields distinguish "not set" from zero.
type Entry struct {
	Name   string   `yaml:"name"`
	Data   string   `yaml:"data"`
	Shape  []int    `yaml:"shape,omitempty"`
	Bits   *int     `yaml:"bits,omitempty"`
	Scale  *float64 `yaml:"scale,omitempty"`
	Offset *float64 `yaml:"offset,omitempty"`
}

// Load reads and parses a manifest file.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse parses manifest YAML. Data paths resolve against the working directory.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Variables) == 0 {
		return nil, errors.New("manifest has no variables")
	}
	for i, e := range m.Variables {
		if e.Data == "" {
			return nil, fmt.Errorf("variable %d (%s): missing data path", i, e.Name)
		}
	}
	return &m, nil
}

// Params returns the entry's quantization parameters with unset fields taken from defaults.
func (e Entry) Params(defaults drdat.Params) drdat.Params {
	p := defaults
	if e.Bits != nil {
		p.BitsPerSample = *e.Bits
	}
	if e.Scale != nil {
		p.Scale = *e.Scale
	}
	if e.Offset != nil {
		p.Offset = *e.Offset
	}
	return p
}

// Read reads every entry's data and returns the variables in manifest order.
func (m *Manifest) Read(fs afero.Fs, defaults drdat.Params) ([]drdat.Variable, error) {
	vars := make([]drdat.Variable, 0, len(m.Variables))
	for i, e := range m.Variables {
		path := e.Data
		if !filepath.IsAbs(path) && m.dir != "" {
			path = filepath.Join(m.dir, path)
		}
		raw, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("variable %d (%s): %w", i, e.Name, err)
		}
		arr, err := ParseArray(raw)
		if err != nil {
			return nil, fmt.Errorf("variable %d (%s): %s: %w", i, e.Name, path, err)
		}
		if len(e.Shape) > 0 {
			if arr, err = drdat.FromSlice(arr.Data, e.Shape...); err != nil {
				return nil, fmt.Errorf("variable %d (%s): reshape: %w", i, e.Name, err)
			}
		}
		vars = append(vars, drdat.Variable{Array: arr, Params: e.Params(defaults)})
	}
	return vars, nil
}
